package ports

import (
	"context"
	"time"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// RelationalDB defines the interface for changelog persistence: the queue of
// pending change records, committed patches and the audit log.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Pending change operations

	// SavePendingChange queues a change record until the next commit.
	SavePendingChange(ctx context.Context, change *entities.ChangeRecord) error

	// ListPendingChanges lists queued change records, oldest first.
	ListPendingChanges(ctx context.Context) ([]entities.ChangeRecord, error)

	// DeletePendingChange removes one queued change record.
	DeletePendingChange(ctx context.Context, id string) error

	// Patch operations

	// SavePatch stores a patch with its change records and removes the
	// consumed pending changes in the same transaction.
	SavePatch(ctx context.Context, patch *entities.Patch, consumedPendingIDs []string) error

	// FindPatch finds a patch with its change records. Returns nil if not found.
	FindPatch(ctx context.Context, id string) (*entities.Patch, error)

	// ListPatches lists patches newest first, without their change records.
	ListPatches(ctx context.Context, limit int) ([]entities.Patch, error)

	// MarkPatchRolledBack flags a patch as rolled back.
	MarkPatchRolledBack(ctx context.Context, id string, at time.Time) error

	// FindChangesByTarget finds committed change records for one entity, oldest first.
	FindChangesByTarget(ctx context.Context, category entities.Category, targetID string) ([]entities.ChangeRecord, error)

	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, targetID string, details map[string]any) error

	// FindAuditLog finds audit log entries for a specific target.
	FindAuditLog(ctx context.Context, targetID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds audit log entries by action type.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
