package bic

import (
	"bytes"
	"strings"
	"testing"
)

func kinds(problems []Problem) map[ProblemKind]int {
	m := make(map[ProblemKind]int)
	for _, p := range problems {
		m[p.Kind]++
	}
	return m
}

func TestCheckCompatible(t *testing.T) {
	if problems := Check(VTableDiff{}, SizeDiff{}, true); len(problems) != 0 {
		t.Errorf("empty diffs reported problems: %v", problems)
	}
}

func TestCheckAlwaysFailing(t *testing.T) {
	vdiff := VTableDiff{
		RemovedVTables:  []string{"Foo"},
		ModifiedVTables: []Pair{{"0 Foo::bar", "0 Foo::baz"}},
	}
	sdiff := SizeDiff{
		Mismatch: []string{"Foo"},
		Removed:  []string{"Bar"},
	}

	for _, patchRelease := range []bool{false, true} {
		problems := Check(vdiff, sdiff, patchRelease)
		got := kinds(problems)
		if got[VTableRemoved] != 1 || got[VTableModified] != 1 || got[SizeMismatch] != 1 || got[ClassRemoved] != 1 {
			t.Errorf("patchRelease=%v: problems = %v", patchRelease, problems)
		}
	}
}

func TestCheckAdditionsOnlyFailPatchReleases(t *testing.T) {
	vdiff := VTableDiff{
		AddedVTables: []string{"Foo"},
		ReimpMethods: []Pair{{"0 A::m", "0 B::m"}},
	}
	sdiff := SizeDiff{Added: []string{"Foo"}}

	if problems := Check(vdiff, sdiff, false); len(problems) != 0 {
		t.Errorf("additions flagged outside a patch release: %v", problems)
	}

	problems := Check(vdiff, sdiff, true)
	got := kinds(problems)
	if got[VTableAdded] != 1 || got[MethodReimplemented] != 1 || got[ClassAdded] != 1 {
		t.Errorf("patch release additions not flagged: %v", problems)
	}
}

func TestCheckLogsProblems(t *testing.T) {
	vdiff := VTableDiff{
		RemovedVTables:  []string{"Foo"},
		ModifiedVTables: []Pair{{"0 Foo::bar", "0 Foo::baz"}},
	}
	sdiff := SizeDiff{Mismatch: []string{"Bar"}}

	var buf bytes.Buffer
	check(vdiff, sdiff, false, newTestLogger(&buf))
	out := buf.String()

	for _, want := range []string{
		"vtable for Foo was removed",
		"modified vtable entry",
		"size mismatch for Bar",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("check log does not contain %q:\n%s", want, out)
		}
	}
}

func TestProblemString(t *testing.T) {
	tests := []struct {
		problem Problem
		want    string
	}{
		{Problem{Kind: VTableRemoved, Class: "Foo"}, "vtable for Foo was removed"},
		{Problem{Kind: SizeMismatch, Class: "Foo"}, "size mismatch for Foo"},
		{Problem{Kind: VTableModified, Old: "0 a", New: "0 b"}, `modified vtable entry: old "0 a" new "0 b"`},
	}
	for _, tt := range tests {
		if got := tt.problem.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
