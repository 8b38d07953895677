package bic

import (
	"fmt"

	"github.com/go-bic/bic/pkg/logflags"
	"github.com/sirupsen/logrus"
)

// ProblemKind classifies a compatibility violation.
type ProblemKind int

const (
	// VTableRemoved means a class lost its vtable entirely.
	VTableRemoved ProblemKind = iota
	// VTableModified means a vtable slot changed incompatibly, or the
	// vtable changed length.
	VTableModified
	// VTableAdded means a class gained a vtable in a patch release.
	VTableAdded
	// MethodReimplemented means a virtual was re-implemented in a patch
	// release.
	MethodReimplemented
	// SizeMismatch means a class changed size.
	SizeMismatch
	// ClassRemoved means a class disappeared from the size table.
	ClassRemoved
	// ClassAdded means a class appeared in the size table in a patch
	// release.
	ClassAdded
)

// Problem is one compatibility violation found by Check. For per-entry
// kinds Old and New carry the two vtable entry renderings; for per-class
// kinds Class names the affected class.
type Problem struct {
	Kind  ProblemKind
	Class string
	Old   string
	New   string
}

func (p Problem) String() string {
	switch p.Kind {
	case VTableRemoved:
		return fmt.Sprintf("vtable for %s was removed", p.Class)
	case VTableModified:
		return fmt.Sprintf("modified vtable entry: old %q new %q", p.Old, p.New)
	case VTableAdded:
		return fmt.Sprintf("vtable for %s was added in a patch release", p.Class)
	case MethodReimplemented:
		return fmt.Sprintf("reimplemented virtual in patch release: old %q new %q", p.Old, p.New)
	case SizeMismatch:
		return fmt.Sprintf("size mismatch for %s", p.Class)
	case ClassRemoved:
		return fmt.Sprintf("class %s was removed", p.Class)
	case ClassAdded:
		return fmt.Sprintf("class %s was added in a patch release", p.Class)
	}
	return "unknown problem"
}

// Check applies the compatibility policy to a pair of diffs and returns the
// violations found, or nil if the two versions are binary compatible.
//
// Removals, modified vtables and size changes always violate binary
// compatibility. Additions and re-implemented virtuals are legitimate in a
// feature release but forbidden within a patch release.
func Check(vdiff VTableDiff, sdiff SizeDiff, patchRelease bool) []Problem {
	return check(vdiff, sdiff, patchRelease, logflags.CheckLogger())
}

func check(vdiff VTableDiff, sdiff SizeDiff, patchRelease bool, log *logrus.Entry) []Problem {
	var problems []Problem

	for _, className := range vdiff.RemovedVTables {
		problems = append(problems, Problem{Kind: VTableRemoved, Class: className})
	}
	for _, pair := range vdiff.ModifiedVTables {
		problems = append(problems, Problem{Kind: VTableModified, Old: pair.Old, New: pair.New})
	}
	if patchRelease {
		for _, className := range vdiff.AddedVTables {
			problems = append(problems, Problem{Kind: VTableAdded, Class: className})
		}
		for _, pair := range vdiff.ReimpMethods {
			problems = append(problems, Problem{Kind: MethodReimplemented, Old: pair.Old, New: pair.New})
		}
	}

	for _, className := range sdiff.Mismatch {
		problems = append(problems, Problem{Kind: SizeMismatch, Class: className})
	}
	for _, className := range sdiff.Removed {
		problems = append(problems, Problem{Kind: ClassRemoved, Class: className})
	}
	if patchRelease {
		for _, className := range sdiff.Added {
			problems = append(problems, Problem{Kind: ClassAdded, Class: className})
		}
	}

	for _, problem := range problems {
		log.Debugf("%s", problem)
	}
	return problems
}
