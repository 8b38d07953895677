package bic

import (
	"regexp"
	"strings"
)

type blacklistPattern struct {
	source string
	re     *regexp.Regexp
}

// Blacklist is an immutable set of class name exclusion patterns. The zero
// value excludes only template instantiations. Derive extended or reduced
// sets with With and Without; a Blacklist is never mutated in place and is
// safe to share across concurrent parses.
type Blacklist struct {
	patterns []blacklistPattern
}

// NewBlacklist compiles the given patterns. A pattern containing '*' or '?'
// is interpreted as a wildcard, anything else as a regular expression; both
// are anchored to match the whole class name. Patterns that fail to compile
// are ignored.
func NewBlacklist(patterns []string) Blacklist {
	var bl Blacklist
	return bl.With(patterns...)
}

// With returns a copy of the blacklist with the given patterns added.
func (bl Blacklist) With(patterns ...string) Blacklist {
	compiled := make([]blacklistPattern, 0, len(bl.patterns)+len(patterns))
	compiled = append(compiled, bl.patterns...)
	for _, pattern := range patterns {
		re, err := regexp.Compile(anchoredPattern(pattern))
		if err != nil {
			continue
		}
		compiled = append(compiled, blacklistPattern{source: pattern, re: re})
	}
	return Blacklist{patterns: compiled}
}

// Without returns a copy of the blacklist with all occurrences of the given
// patterns removed, matched by their original source text.
func (bl Blacklist) Without(patterns ...string) Blacklist {
	compiled := make([]blacklistPattern, 0, len(bl.patterns))
	for _, p := range bl.patterns {
		remove := false
		for _, pattern := range patterns {
			if p.source == pattern {
				remove = true
				break
			}
		}
		if !remove {
			compiled = append(compiled, p)
		}
	}
	return Blacklist{patterns: compiled}
}

// IsBlacklisted reports whether className should be excluded from a
// snapshot. Template instantiations are always excluded.
func (bl Blacklist) IsBlacklisted(className string) bool {
	if strings.Contains(className, "<") {
		return true
	}
	for _, p := range bl.patterns {
		if p.re.MatchString(className) {
			return true
		}
	}
	return false
}

func anchoredPattern(pattern string) string {
	if strings.ContainsAny(pattern, "*?") {
		pattern = wildcardToRegexp(pattern)
	}
	return "^(?:" + pattern + ")$"
}

// wildcardToRegexp converts a glob-style wildcard into a regular expression:
// '*' matches any run of characters, '?' any single character, everything
// else is matched literally.
func wildcardToRegexp(wildcard string) string {
	var sb strings.Builder
	for _, r := range wildcard {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return sb.String()
}

// DefaultBlacklist returns the stock exclusion set: standard library and
// libc internals, system structs dragged in by platform headers, and
// classes that are documented as private or compile-time only.
func DefaultBlacklist() Blacklist {
	return NewBlacklist([]string{
		"std::*",
		"qIsNull*",
		"_*",
		"<anonymous*",

		// system stuff we don't care for
		"drand",
		"itimerspec",
		"lconv",
		"pthread_attr_t",
		"random",
		"sched_param",
		"sigcontext",
		"sigaltstack",
		"timespec",
		"timeval",
		"timex",
		"tm",
		"ucontext64",
		"ucontext",
		"wait",

		// win32 SDK structs that not every SDK level has
		"tagTITLEBARINFO",
		"tagMENUITEMINFOA",
		"tagMENUITEMINFOW",
		"tagENHMETAHEADER",
	})
}
