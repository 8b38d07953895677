package bic

import (
	"fmt"
	"io"
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

// WriteVTableReport renders a vtable diff as human-readable warnings. For a
// class reported with the "size mismatch" sentinel the two normalized
// vtables are rendered as a unified diff so the changed slots are visible.
func WriteVTableReport(w io.Writer, diff VTableDiff, oldLib, newLib Info) {
	if len(diff.RemovedVTables) > 0 {
		fmt.Fprintf(w, "VTables for the following classes were removed: %s\n",
			strings.Join(diff.RemovedVTables, ", "))
	}
	for _, pair := range diff.ModifiedVTables {
		if pair.New == "size mismatch" {
			className := pair.Old
			fmt.Fprintf(w, "modified VTable for %s (size mismatch):\n", className)
			fmt.Fprint(w, udiff.Unified(
				"old/"+className, "new/"+className,
				vtableText(oldLib, className), vtableText(newLib, className)))
			continue
		}
		fmt.Fprintf(w, "modified VTable:\n    Old: %s\n    New: %s\n", pair.Old, pair.New)
	}
	if len(diff.AddedVTables) > 0 {
		fmt.Fprintf(w, "VTables for the following classes were added: %s\n",
			strings.Join(diff.AddedVTables, ", "))
	}
	for _, pair := range diff.ReimpMethods {
		fmt.Fprintf(w, "reimplemented virtual:\n    Old: %s\n    New: %s\n", pair.Old, pair.New)
	}
}

// WriteSizeReport renders a size diff as human-readable warnings.
func WriteSizeReport(w io.Writer, diff SizeDiff, oldLib, newLib Info) {
	for _, className := range diff.Mismatch {
		fmt.Fprintf(w, "size mismatch for %s: old %d new %d\n",
			className, oldLib.ClassSizes[className], newLib.ClassSizes[className])
	}
	if len(diff.Removed) > 0 {
		fmt.Fprintf(w, "the following classes were removed: %s\n",
			strings.Join(diff.Removed, ", "))
	}
	if len(diff.Added) > 0 {
		fmt.Fprintf(w, "the following classes were added: %s\n",
			strings.Join(diff.Added, ", "))
	}
}

func vtableText(info Info, className string) string {
	vtable := info.ClassVTables[className]
	if len(vtable) == 0 {
		return ""
	}
	return strings.Join(vtable, "\n") + "\n"
}
