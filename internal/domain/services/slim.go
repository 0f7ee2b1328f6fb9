package services

import (
	"fmt"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// BuildSlimChange builds a change record holding only the field-level diff
// between two snapshots of one entity. A nil oldEntity classifies the change
// as an add and a nil newEntity as a delete; in both cases Diffs is empty.
// Both snapshots are normalized and stripped of bookkeeping keys before
// comparison, so an ability encoding change alone produces no entries.
func BuildSlimChange(filename, name, field string, category entities.Category, oldEntity, newEntity map[string]any) (*entities.ChangeRecord, error) {
	change := &entities.ChangeRecord{
		TargetID: filename,
		Name:     name,
		Field:    field,
		Category: category,
		Diffs:    []entities.DiffEntry{},
	}

	switch {
	case oldEntity == nil:
		change.ChangeType = entities.ChangeAdd
		return change, nil
	case newEntity == nil:
		change.ChangeType = entities.ChangeDelete
		return change, nil
	}

	change.ChangeType = entities.ChangeEdit
	lhs := StripInternal(NormalizeEntity(oldEntity))
	rhs := StripInternal(NormalizeEntity(newEntity))

	diffs, err := Diff(lhs, rhs)
	if err != nil {
		return nil, fmt.Errorf("diffing %s/%s: %w", category, filename, err)
	}
	change.Diffs = diffs
	return change, nil
}
