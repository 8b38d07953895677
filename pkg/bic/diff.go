package bic

import (
	"sort"
	"strings"

	"github.com/go-bic/bic/pkg/logflags"
	"github.com/sirupsen/logrus"
)

type entryDiffResult int

const (
	entryMatch entryDiffResult = iota
	entryMismatch
	entryReimp
)

// diffVTableEntry classifies the change between the old and the new
// rendering of one vtable slot. A slot whose new entry is the pure virtual
// trap, or whose unqualified method name is unchanged, counts as a benign
// re-implementation rather than a break.
func diffVTableEntry(oldEntry, newEntry string) entryDiffResult {
	if oldEntry == newEntry {
		return entryMatch
	}
	if strings.HasSuffix(newEntry, pureVirtualSentinel) {
		return entryReimp
	}
	if !strings.Contains(oldEntry, "::") || !strings.Contains(newEntry, "::") {
		return entryMismatch
	}

	sym1 := oldEntry[strings.LastIndex(oldEntry, "::")+2:]
	sym2 := newEntry[strings.LastIndex(newEntry, "::")+2:]

	if sym1 == sym2 {
		return entryReimp
	}
	return entryMismatch
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DiffVTables compares the vtables of two snapshots. New-side additions and
// per-entry changes are reported before old-side removals; classes are
// visited in sorted order so the result is deterministic.
func DiffVTables(oldLib, newLib Info) VTableDiff {
	return diffVTables(oldLib, newLib, logflags.DifferLogger())
}

func diffVTables(oldLib, newLib Info, log *logrus.Entry) VTableDiff {
	var result VTableDiff

	for _, className := range sortedKeys(newLib.ClassVTables) {
		vtable := newLib.ClassVTables[className]
		oldVTable, ok := oldLib.ClassVTables[className]
		if !ok {
			log.Debugf("vtable for %s only in new snapshot", className)
			result.AddedVTables = append(result.AddedVTables, className)
			continue
		}
		if len(vtable) != len(oldVTable) {
			log.Debugf("vtable for %s changed length: %d -> %d", className, len(oldVTable), len(vtable))
			result.ModifiedVTables = append(result.ModifiedVTables, Pair{className, "size mismatch"})
			continue
		}

		for i := range vtable {
			switch diffVTableEntry(oldVTable[i], vtable[i]) {
			case entryMatch:
				// do nothing
			case entryMismatch:
				log.Debugf("modified entry for %s: %q -> %q", className, oldVTable[i], vtable[i])
				result.ModifiedVTables = append(result.ModifiedVTables, Pair{oldVTable[i], vtable[i]})
			case entryReimp:
				log.Debugf("reimplemented entry for %s: %q -> %q", className, oldVTable[i], vtable[i])
				result.ReimpMethods = append(result.ReimpMethods, Pair{oldVTable[i], vtable[i]})
			}
		}
	}

	for _, className := range sortedKeys(oldLib.ClassVTables) {
		if _, ok := newLib.ClassVTables[className]; !ok {
			log.Debugf("vtable for %s only in old snapshot", className)
			result.RemovedVTables = append(result.RemovedVTables, className)
		}
	}

	return result
}

// DiffSizes compares the object sizes of two snapshots.
func DiffSizes(oldLib, newLib Info) SizeDiff {
	return diffSizes(oldLib, newLib, logflags.DifferLogger())
}

func diffSizes(oldLib, newLib Info, log *logrus.Entry) SizeDiff {
	var result SizeDiff

	newKeys := make([]string, 0, len(newLib.ClassSizes))
	for k := range newLib.ClassSizes {
		newKeys = append(newKeys, k)
	}
	sort.Strings(newKeys)
	for _, className := range newKeys {
		oldSize, ok := oldLib.ClassSizes[className]
		if !ok {
			log.Debugf("class %s only in new snapshot", className)
			result.Added = append(result.Added, className)
			continue
		}
		if oldSize != newLib.ClassSizes[className] {
			log.Debugf("size of %s changed: %d -> %d", className, oldSize, newLib.ClassSizes[className])
			result.Mismatch = append(result.Mismatch, className)
		}
	}

	oldKeys := make([]string, 0, len(oldLib.ClassSizes))
	for k := range oldLib.ClassSizes {
		oldKeys = append(oldKeys, k)
	}
	sort.Strings(oldKeys)
	for _, className := range oldKeys {
		if _, ok := newLib.ClassSizes[className]; !ok {
			log.Debugf("class %s only in old snapshot", className)
			result.Removed = append(result.Removed, className)
		}
	}

	return result
}
