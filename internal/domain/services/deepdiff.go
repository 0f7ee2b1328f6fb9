package services

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// Diff computes the structural differences between two JSON-like values.
//
// Objects are compared key by key (removed keys first, then changed, then
// added, each in key order). Arrays are compared index by index; trailing
// additions and removals are emitted as DiffArray entries in descending
// index order, the order deep-diff records them in.
func Diff(lhs, rhs any) ([]entities.DiffEntry, error) {
	if err := validateValue(lhs); err != nil {
		return nil, fmt.Errorf("old value: %w", err)
	}
	if err := validateValue(rhs); err != nil {
		return nil, fmt.Errorf("new value: %w", err)
	}

	d := &differ{entries: []entities.DiffEntry{}}
	d.walk(nil, lhs, rhs)
	return d.entries, nil
}

type differ struct {
	entries []entities.DiffEntry
}

func (d *differ) walk(path entities.Path, lhs, rhs any) {
	lm, lIsMap := lhs.(map[string]any)
	rm, rIsMap := rhs.(map[string]any)
	if lIsMap && rIsMap {
		d.walkObject(path, lm, rm)
		return
	}

	la, lIsArr := lhs.([]any)
	ra, rIsArr := rhs.([]any)
	if lIsArr && rIsArr {
		d.walkArray(path, la, ra)
		return
	}

	if !scalarEqual(lhs, rhs) {
		d.entries = append(d.entries, entities.DiffEntry{
			Kind: entities.DiffEdit,
			Path: path,
			LHS:  cloneValue(lhs),
			RHS:  cloneValue(rhs),
		})
	}
}

func (d *differ) walkObject(path entities.Path, lhs, rhs map[string]any) {
	for _, k := range sortedKeys(lhs) {
		child := path.Child(entities.Key(k))
		rv, ok := rhs[k]
		if !ok {
			d.entries = append(d.entries, entities.DiffEntry{
				Kind: entities.DiffDeleted,
				Path: child,
				LHS:  cloneValue(lhs[k]),
			})
			continue
		}
		d.walk(child, lhs[k], rv)
	}

	for _, k := range sortedKeys(rhs) {
		if _, ok := lhs[k]; ok {
			continue
		}
		d.entries = append(d.entries, entities.DiffEntry{
			Kind: entities.DiffNew,
			Path: path.Child(entities.Key(k)),
			RHS:  cloneValue(rhs[k]),
		})
	}
}

func (d *differ) walkArray(path entities.Path, lhs, rhs []any) {
	shared := min(len(lhs), len(rhs))
	for i := 0; i < shared; i++ {
		d.walk(path.Child(entities.Index(i)), lhs[i], rhs[i])
	}

	for i := len(rhs) - 1; i >= shared; i-- {
		d.entries = append(d.entries, entities.DiffEntry{
			Kind:  entities.DiffArray,
			Path:  path.Clone(),
			Index: i,
			Item:  &entities.DiffEntry{Kind: entities.DiffNew, RHS: cloneValue(rhs[i])},
		})
	}

	for i := len(lhs) - 1; i >= shared; i-- {
		d.entries = append(d.entries, entities.DiffEntry{
			Kind:  entities.DiffArray,
			Path:  path.Clone(),
			Index: i,
			Item:  &entities.DiffEntry{Kind: entities.DiffDeleted, LHS: cloneValue(lhs[i])},
		})
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scalarEqual compares two values that are not both objects or both arrays.
// Numbers compare by value regardless of their Go type.
func scalarEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		// Mixed container kinds (object vs array) always differ.
		return false
	}
}

// validateValue rejects anything that cannot appear in a decoded JSON document.
func validateValue(v any) error {
	switch t := v.(type) {
	case nil, string, bool:
		return nil
	case map[string]any:
		for k, child := range t {
			if err := validateValue(child); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
		return nil
	case []any:
		for i, child := range t {
			if err := validateValue(child); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case json.Number:
		return nil
	default:
		if _, ok := toFloat(v); ok {
			return nil
		}
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}
