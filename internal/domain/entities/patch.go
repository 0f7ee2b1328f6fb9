package entities

import "time"

// PatchStatus tracks whether a patch is still applied.
type PatchStatus string

const (
	PatchCommitted  PatchStatus = "committed"
	PatchRolledBack PatchStatus = "rolled_back"
)

// Patch is a versioned, titled bundle of change records forming one changelog entry.
type Patch struct {
	ID           string         `json:"id"`
	Version      string         `json:"version"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	Tags         []string       `json:"tags,omitempty"`
	Status       PatchStatus    `json:"status"`
	Changes      []ChangeRecord `json:"changes"`
	CreatedAt    time.Time      `json:"created_at"`
	RolledBackAt *time.Time     `json:"rolled_back_at,omitempty"`
}
