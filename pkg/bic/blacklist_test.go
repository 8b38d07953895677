package bic

import (
	"testing"
)

func TestBlacklistWildcards(t *testing.T) {
	bl := NewBlacklist([]string{"Q*", "std::*", "tm", "wid?et"})

	tests := []struct {
		name        string
		className   string
		blacklisted bool
	}{
		{"wildcard prefix", "QObject", true},
		{"wildcard prefix bare", "Q", true},
		{"scoped wildcard", "std::vector", true},
		{"exact name", "tm", true},
		{"exact name is anchored", "tmspec", false},
		{"question mark", "widget", true},
		{"question mark needs a char", "widet", false},
		{"unrelated class", "Widget", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bl.IsBlacklisted(tt.className); got != tt.blacklisted {
				t.Errorf("IsBlacklisted(%q) = %v, want %v", tt.className, got, tt.blacklisted)
			}
		})
	}
}

func TestBlacklistTemplatesAlwaysExcluded(t *testing.T) {
	var bl Blacklist
	for _, className := range []string{"QList<int>", "QMap<QString, int>::iterator", "<anonymous>"} {
		if !bl.IsBlacklisted(className) {
			t.Errorf("template instantiation %q not blacklisted", className)
		}
	}
}

func TestBlacklistRegexp(t *testing.T) {
	bl := NewBlacklist([]string{"Q(Object|Widget)"})
	if !bl.IsBlacklisted("QWidget") {
		t.Error("regexp pattern did not match QWidget")
	}
	if bl.IsBlacklisted("QWidgetPrivate") {
		t.Error("regexp pattern is not anchored")
	}
}

func TestBlacklistWithout(t *testing.T) {
	bl := NewBlacklist([]string{"Q*", "tm"})
	reduced := bl.Without("Q*")

	if reduced.IsBlacklisted("QObject") {
		t.Error("removed pattern still matches")
	}
	if !reduced.IsBlacklisted("tm") {
		t.Error("unrelated pattern was dropped")
	}
	// the original value is unaffected
	if !bl.IsBlacklisted("QObject") {
		t.Error("Without modified its receiver")
	}
}

func TestBlacklistInvalidPatternDoesNotCrash(t *testing.T) {
	bl := NewBlacklist([]string{"([", "tm"})
	if bl.IsBlacklisted("anything") {
		t.Error("invalid pattern matched")
	}
	if !bl.IsBlacklisted("tm") {
		t.Error("valid pattern after an invalid one was dropped")
	}
}

func TestDefaultBlacklist(t *testing.T) {
	bl := DefaultBlacklist()
	for _, className := range []string{"std::vector", "_IO_FILE", "timespec", "ucontext"} {
		if !bl.IsBlacklisted(className) {
			t.Errorf("expected default blacklist to exclude %q", className)
		}
	}
	if bl.IsBlacklisted("QObject") {
		t.Error("default blacklist excludes library classes")
	}
}
