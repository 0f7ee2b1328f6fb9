package entities

import "time"

// ChangeType classifies a change record.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeEdit   ChangeType = "edit"
	ChangeDelete ChangeType = "delete"
)

// EntityField is the field label used for whole-entity change records.
const EntityField = "entity"

// ChangeRecord is one edit event against one entity. Only the diff entries
// are kept; before/after snapshots are never stored.
type ChangeRecord struct {
	ID         string      `json:"id"`
	TargetID   string      `json:"target_id"`
	Name       string      `json:"name"`
	Field      string      `json:"field"`
	Category   Category    `json:"category"`
	ChangeType ChangeType  `json:"change_type"`
	Diffs      []DiffEntry `json:"diffs"`
	CreatedAt  time.Time   `json:"created_at"`
}
