package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// DeltaResult is the outcome of ComputeDelta.
type DeltaResult struct {
	// Payload is the raw disk snapshot with only user-changed fields overlaid.
	Payload map[string]any
	// ChangedFields lists the top-level fields the user changed, sorted.
	ChangedFields []string
}

// HasChanges reports whether any field differs from the loaded state.
func (r *DeltaResult) HasChanges() bool {
	return len(r.ChangedFields) > 0
}

// ComputeDelta extracts the fields of current that differ from
// normalizedInitial (the editor-form snapshot the form was seeded from) and
// overlays exactly those fields onto a deep clone of raw. Untouched fields
// keep their on-disk shape, so read-time migrations are never persisted as a
// side effect of an unrelated edit. Bookkeeping fields are ignored; the
// payload always gets a fresh last_modified timestamp.
func ComputeDelta(raw, normalizedInitial, current map[string]any, now time.Time) (*DeltaResult, error) {
	changed := make([]string, 0, len(current))
	for field, value := range current {
		if IsInternalField(field) {
			continue
		}
		initial, existed := normalizedInitial[field]
		if existed {
			same, err := canonicalEqual(initial, value)
			if err != nil {
				return nil, fmt.Errorf("comparing field %q: %w", field, err)
			}
			if same {
				continue
			}
		}
		changed = append(changed, field)
	}
	sort.Strings(changed)

	payload := CloneEntity(raw)
	if payload == nil {
		payload = make(map[string]any, len(changed)+1)
	}
	for _, field := range changed {
		payload[field] = cloneValue(current[field])
	}
	payload[entities.FieldLastModified] = now.UTC().Format(time.RFC3339)

	return &DeltaResult{Payload: payload, ChangedFields: changed}, nil
}

// canonicalEqual compares two values by their serialized form. encoding/json
// writes object keys in sorted order, so key insertion order never matters.
func canonicalEqual(a, b any) (bool, error) {
	aj, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(aj, bj), nil
}
