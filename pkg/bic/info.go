// Package bic checks the binary compatibility of two versions of a C++
// library by comparing compiler-emitted class-hierarchy dumps.
//
// A dump (gcc -fdump-class-hierarchy output) is parsed into an Info
// snapshot holding per-class object sizes and normalized vtables. Two
// snapshots are then compared, producing a VTableDiff and a SizeDiff that
// a caller renders or feeds into Check to obtain a pass/fail verdict.
package bic

// Info is the parsed ABI surface of one compiled library.
type Info struct {
	// ClassSizes maps a class name to its object size in bytes.
	ClassSizes map[string]int
	// ClassVTables maps a class name to its normalized vtable entries, in
	// slot order. Entries at the same index across two snapshots are
	// compared positionally.
	ClassVTables map[string][]string
}

func newInfo() Info {
	return Info{
		ClassSizes:   make(map[string]int),
		ClassVTables: make(map[string][]string),
	}
}

// Pair holds the old and new rendering of one vtable entry.
type Pair struct {
	Old string
	New string
}

// VTableDiff describes how the vtables of two snapshots differ.
type VTableDiff struct {
	// AddedVTables lists classes present only in the new snapshot.
	AddedVTables []string
	// RemovedVTables lists classes present only in the old snapshot.
	RemovedVTables []string
	// ModifiedVTables lists entry pairs where an incompatible change was
	// detected. A class whose vtable length changed is reported as a
	// single sentinel pair (class name, "size mismatch").
	ModifiedVTables []Pair
	// ReimpMethods lists entry pairs classified as a benign
	// re-implementation of the same virtual method.
	ReimpMethods []Pair
}

// SizeDiff describes how the object sizes of two snapshots differ.
type SizeDiff struct {
	Added    []string
	Removed  []string
	Mismatch []string
}
