package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// RelationalDB is an in-memory implementation of ports.RelationalDB.
type RelationalDB struct {
	mu      sync.Mutex
	Pending []entities.ChangeRecord
	Patches map[string]*entities.Patch
	Audit   []entities.AuditEntry
	Err     error
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Patches: make(map[string]*entities.Patch),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

// Pending change methods.

// SavePendingChange queues a change record.
func (m *RelationalDB) SavePendingChange(_ context.Context, change *entities.ChangeRecord) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pending = append(m.Pending, *change)
	return nil
}

// ListPendingChanges lists queued change records, oldest first.
func (m *RelationalDB) ListPendingChanges(_ context.Context) ([]entities.ChangeRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.ChangeRecord(nil), m.Pending...), nil
}

// DeletePendingChange removes one queued change record.
func (m *RelationalDB) DeletePendingChange(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removePending(id)
	return nil
}

func (m *RelationalDB) removePending(id string) {
	kept := m.Pending[:0]
	for _, c := range m.Pending {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.Pending = kept
}

// Patch methods.

// SavePatch stores a patch and removes the consumed pending changes.
func (m *RelationalDB) SavePatch(_ context.Context, patch *entities.Patch, consumedPendingIDs []string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *patch
	stored.Changes = append([]entities.ChangeRecord(nil), patch.Changes...)
	m.Patches[patch.ID] = &stored
	for _, id := range consumedPendingIDs {
		m.removePending(id)
	}
	return nil
}

// FindPatch finds a patch by ID. Returns nil if not found.
func (m *RelationalDB) FindPatch(_ context.Context, id string) (*entities.Patch, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Patches[id]
	if !ok {
		return nil, nil
	}
	out := *p
	out.Changes = append([]entities.ChangeRecord(nil), p.Changes...)
	return &out, nil
}

// ListPatches lists patches newest first.
func (m *RelationalDB) ListPatches(_ context.Context, limit int) ([]entities.Patch, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entities.Patch, 0, len(m.Patches))
	for _, p := range m.Patches {
		summary := *p
		summary.Changes = nil
		result = append(result, summary)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// MarkPatchRolledBack flags a patch as rolled back.
func (m *RelationalDB) MarkPatchRolledBack(_ context.Context, id string, at time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Patches[id]; ok {
		p.Status = entities.PatchRolledBack
		p.RolledBackAt = &at
	}
	return nil
}

// FindChangesByTarget finds committed change records for one entity.
func (m *RelationalDB) FindChangesByTarget(_ context.Context, category entities.Category, targetID string) ([]entities.ChangeRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entities.ChangeRecord
	for _, p := range m.Patches {
		for _, c := range p.Changes {
			if c.Category == category && c.TargetID == targetID {
				result = append(result, c)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Audit log methods.

// LogAction logs an action to the audit log.
func (m *RelationalDB) LogAction(_ context.Context, action string, targetID string, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:        int64(len(m.Audit) + 1),
		Action:    action,
		TargetID:  targetID,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// FindAuditLog finds audit log entries for a specific target.
func (m *RelationalDB) FindAuditLog(_ context.Context, targetID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entities.AuditEntry
	for _, e := range m.Audit {
		if e.TargetID == targetID {
			result = append(result, e)
		}
	}
	return result, nil
}

// FindAuditLogByAction finds audit log entries by action type.
func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entities.AuditEntry
	for _, e := range m.Audit {
		if e.Action == action {
			result = append(result, e)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
