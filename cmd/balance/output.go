package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/domain/services"
)

// writeDocument prints an entity document in the on-disk key order.
func writeDocument(w io.Writer, doc map[string]any) error {
	data, err := services.MarshalSorted(doc)
	if err != nil {
		return fmt.Errorf("encoding entity: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// formatValue renders a diff value compactly on one line.
func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(services.SortKeys(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// describeDiff renders one diff entry as a single changelog line.
func describeDiff(d entities.DiffEntry) string {
	path := d.Path.String()
	if path == "" {
		path = "(root)"
	}

	switch d.Kind {
	case entities.DiffEdit:
		return fmt.Sprintf("~ %s: %s -> %s", path, formatValue(d.LHS), formatValue(d.RHS))
	case entities.DiffNew:
		return fmt.Sprintf("+ %s: %s", path, formatValue(d.RHS))
	case entities.DiffDeleted:
		return fmt.Sprintf("- %s: %s", path, formatValue(d.LHS))
	case entities.DiffArray:
		if d.Item == nil {
			return fmt.Sprintf("* %s.%d", path, d.Index)
		}
		item := *d.Item
		item.Path = d.Path.Child(entities.Index(d.Index))
		return describeDiff(item)
	default:
		return fmt.Sprintf("? %s", path)
	}
}

// writeChange prints a change record header followed by its diff lines.
func writeChange(w io.Writer, change entities.ChangeRecord) {
	fmt.Fprintf(w, "%s  [%s] %s/%s", change.ID, change.ChangeType, change.Category, change.TargetID)
	if change.Field != "" && change.Field != entities.EntityField {
		fmt.Fprintf(w, " (%s)", change.Field)
	}
	fmt.Fprintln(w)
	for _, d := range change.Diffs {
		fmt.Fprintf(w, "    %s\n", describeDiff(d))
	}
}

// writePatchSummary prints the one-line listing form of a patch.
func writePatchSummary(w io.Writer, patch entities.Patch) {
	fmt.Fprintf(w, "%s  %-10s %s  %s", patch.ID, patch.Version, patch.Date, patch.Title)
	if len(patch.Tags) > 0 {
		fmt.Fprintf(w, "  [%s]", strings.Join(patch.Tags, ", "))
	}
	if patch.Status == entities.PatchRolledBack {
		fmt.Fprint(w, "  (rolled back)")
	}
	fmt.Fprintln(w)
}
