package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// unsafeSegments are rejected in dotted paths; the files are also read by
// JavaScript tooling where these names reach the prototype chain.
var unsafeSegments = map[string]struct{}{
	"__proto__":   {},
	"constructor": {},
	"prototype":   {},
}

// ApplyInverse reverts one diff entry against target, in place. Missing
// intermediate containers along the path are created (an array when the next
// segment is an index, an object otherwise). Entries with an empty path or an
// unknown kind are ignored.
func ApplyInverse(target map[string]any, d entities.DiffEntry) {
	if target == nil || len(d.Path) == 0 {
		return
	}
	switch d.Kind {
	case entities.DiffEdit, entities.DiffNew, entities.DiffDeleted, entities.DiffArray:
	default:
		return
	}
	updateAt(target, d.Path, func(container any, seg entities.Segment) any {
		return revertLeaf(container, seg, d)
	})
}

// RevertAll reverts every entry of a diff list in list order.
func RevertAll(target map[string]any, diffs []entities.DiffEntry) {
	for _, d := range diffs {
		ApplyInverse(target, d)
	}
}

// diffsApplied reports whether target still holds the new side of every
// entry, i.e. whether reverting diffs would undo them rather than clobber
// later edits or revert twice.
func diffsApplied(target map[string]any, diffs []entities.DiffEntry) bool {
	for _, d := range diffs {
		if !diffApplied(target, d) {
			return false
		}
	}
	return true
}

func diffApplied(target map[string]any, d entities.DiffEntry) bool {
	value, found := lookupPath(target, d.Path)
	switch d.Kind {
	case entities.DiffEdit, entities.DiffNew:
		return found && sameValue(value, d.RHS)
	case entities.DiffDeleted:
		return !found
	case entities.DiffArray:
		if d.Item == nil {
			return true
		}
		arr, _ := value.([]any)
		switch d.Item.Kind {
		case entities.DiffDeleted:
			return d.Index >= len(arr)
		case entities.DiffNew, entities.DiffEdit:
			return d.Index < len(arr) && sameValue(arr[d.Index], d.Item.RHS)
		}
	}
	return true
}

func lookupPath(container any, path entities.Path) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	for _, seg := range path {
		switch c := container.(type) {
		case map[string]any:
			v, ok := c[seg.String()]
			if !ok {
				return nil, false
			}
			container = v
		case []any:
			if !seg.IsIndex || seg.Index >= len(c) {
				return nil, false
			}
			container = c[seg.Index]
		default:
			return nil, false
		}
	}
	return container, true
}

func sameValue(a, b any) bool {
	same, err := canonicalEqual(a, b)
	return err == nil && same
}

func revertLeaf(container any, seg entities.Segment, d entities.DiffEntry) any {
	switch d.Kind {
	case entities.DiffEdit, entities.DiffDeleted:
		return setChild(container, seg, cloneValue(d.LHS))
	case entities.DiffNew:
		return deleteChild(container, seg)
	case entities.DiffArray:
		arr, _ := getChild(container, seg).([]any)
		return setChild(container, seg, revertArrayItem(arr, d.Index, d.Item))
	default:
		return container
	}
}

func revertArrayItem(arr []any, index int, item *entities.DiffEntry) []any {
	if item == nil || index < 0 {
		return arr
	}
	switch item.Kind {
	case entities.DiffNew:
		// An index past the end means a lower trailing addition was removed
		// first and this element shifted down to the last position.
		if len(arr) > 0 {
			i := min(index, len(arr)-1)
			return slices.Delete(arr, i, i+1)
		}
	case entities.DiffDeleted:
		return slices.Insert(arr, min(index, len(arr)), cloneValue(item.LHS))
	case entities.DiffEdit:
		for len(arr) <= index {
			arr = append(arr, nil)
		}
		arr[index] = cloneValue(item.LHS)
	}
	return arr
}

// ApplyPathChange sets value at a dotted path such as "abilities.primary.damage",
// creating missing containers. A path naming a prototype-sensitive segment is
// rejected before anything is touched and the attempt is logged.
func ApplyPathChange(log logrus.FieldLogger, target map[string]any, dotted string, value any) error {
	if target == nil || dotted == "" {
		return fmt.Errorf("%w: %q", ErrInvalidPath, dotted)
	}
	for _, part := range strings.Split(dotted, ".") {
		if part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, dotted)
		}
		if _, bad := unsafeSegments[part]; bad {
			log.WithField("path", dotted).Warn("rejected unsafe field path")
			return fmt.Errorf("%w: %q", ErrUnsafePath, dotted)
		}
	}
	if err := validateValue(value); err != nil {
		return err
	}

	updateAt(target, entities.ParsePath(dotted), func(container any, seg entities.Segment) any {
		return setChild(container, seg, cloneValue(value))
	})
	return nil
}

// updateAt walks container along path and calls leaf with the container
// holding the last segment. Each level is written back into its parent,
// since growing a slice may reallocate it.
func updateAt(container any, path entities.Path, leaf func(container any, seg entities.Segment) any) any {
	if container == nil {
		container = newContainerFor(path[0])
	}
	seg := path[0]
	if len(path) == 1 {
		return leaf(container, seg)
	}

	child := getChild(container, seg)
	switch child.(type) {
	case map[string]any, []any:
	default:
		child = newContainerFor(path[1])
	}
	return setChild(container, seg, updateAt(child, path[1:], leaf))
}

func newContainerFor(next entities.Segment) any {
	if next.IsIndex {
		return []any{}
	}
	return map[string]any{}
}

func getChild(container any, seg entities.Segment) any {
	switch c := container.(type) {
	case map[string]any:
		return c[seg.String()]
	case []any:
		if seg.IsIndex && seg.Index < len(c) {
			return c[seg.Index]
		}
	}
	return nil
}

func setChild(container any, seg entities.Segment, v any) any {
	switch c := container.(type) {
	case map[string]any:
		c[seg.String()] = v
		return c
	case []any:
		if !seg.IsIndex {
			return c
		}
		for len(c) <= seg.Index {
			c = append(c, nil)
		}
		c[seg.Index] = v
		return c
	default:
		return container
	}
}

func deleteChild(container any, seg entities.Segment) any {
	switch c := container.(type) {
	case map[string]any:
		delete(c, seg.String())
		return c
	case []any:
		if seg.IsIndex && seg.Index < len(c) {
			return slices.Delete(c, seg.Index, seg.Index+1)
		}
		return c
	default:
		return container
	}
}
