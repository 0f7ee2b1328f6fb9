// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/infrastructure/config"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const memoryPath = ":memory:"

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to :memory: opens its own empty database.
	if cfg.Path == memoryPath {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Committed patches (one changelog entry each)
	CREATE TABLE IF NOT EXISTS patches (
		id TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		tags TEXT,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		rolled_back_at TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_patches_created ON patches(created_at);

	-- Change records bundled into a patch
	CREATE TABLE IF NOT EXISTS change_records (
		id TEXT PRIMARY KEY,
		patch_id TEXT NOT NULL REFERENCES patches(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		target_id TEXT NOT NULL,
		name TEXT,
		field TEXT,
		category TEXT NOT NULL,
		change_type TEXT NOT NULL,
		diffs TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_change_records_patch ON change_records(patch_id, seq);
	CREATE INDEX IF NOT EXISTS idx_change_records_target ON change_records(category, target_id);

	-- Change records waiting for the next commit
	CREATE TABLE IF NOT EXISTS pending_changes (
		id TEXT PRIMARY KEY,
		target_id TEXT NOT NULL,
		name TEXT,
		field TEXT,
		category TEXT NOT NULL,
		change_type TEXT NOT NULL,
		diffs TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		target_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_target ON audit_log(target_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SavePendingChange queues a change record until the next commit.
func (r *Repository) SavePendingChange(ctx context.Context, change *entities.ChangeRecord) error {
	diffs, err := json.Marshal(change.Diffs)
	if err != nil {
		return fmt.Errorf("marshaling diffs: %w", err)
	}

	query := `
		INSERT INTO pending_changes (id, target_id, name, field, category, change_type, diffs, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		change.ID,
		change.TargetID,
		change.Name,
		change.Field,
		string(change.Category),
		string(change.ChangeType),
		string(diffs),
		change.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving pending change: %w", err)
	}
	return nil
}

// ListPendingChanges lists queued change records, oldest first.
func (r *Repository) ListPendingChanges(ctx context.Context) ([]entities.ChangeRecord, error) {
	query := `
		SELECT id, target_id, name, field, category, change_type, diffs, created_at
		FROM pending_changes
		ORDER BY rowid
	`
	return r.queryChanges(ctx, query)
}

// DeletePendingChange removes one queued change record.
func (r *Repository) DeletePendingChange(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pending_changes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting pending change: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pending change %s: %w", id, entities.ErrNotFound)
	}
	return nil
}

// SavePatch stores a patch with its change records and removes the consumed
// pending changes, all in one transaction.
func (r *Repository) SavePatch(ctx context.Context, patch *entities.Patch, consumedPendingIDs []string) error {
	tags, err := json.Marshal(patch.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO patches (id, version, title, date, tags, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		patch.ID,
		patch.Version,
		patch.Title,
		patch.Date,
		string(tags),
		string(patch.Status),
		patch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving patch: %w", err)
	}

	for i := range patch.Changes {
		change := &patch.Changes[i]
		diffs, err := json.Marshal(change.Diffs)
		if err != nil {
			return fmt.Errorf("marshaling diffs: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO change_records (id, patch_id, seq, target_id, name, field, category, change_type, diffs, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			change.ID,
			patch.ID,
			i,
			change.TargetID,
			change.Name,
			change.Field,
			string(change.Category),
			string(change.ChangeType),
			string(diffs),
			change.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("saving change record: %w", err)
		}
	}

	for _, id := range consumedPendingIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pending_changes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("consuming pending change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// FindPatch finds a patch with its change records. Returns nil if not found.
func (r *Repository) FindPatch(ctx context.Context, id string) (*entities.Patch, error) {
	query := `
		SELECT id, version, title, date, tags, status, created_at, rolled_back_at
		FROM patches
		WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, query, id)

	patch, err := scanPatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	changes, err := r.queryChanges(ctx, `
		SELECT id, target_id, name, field, category, change_type, diffs, created_at
		FROM change_records
		WHERE patch_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	patch.Changes = changes
	return patch, nil
}

// ListPatches lists patches newest first, without their change records.
// A limit of zero or less lists every patch.
func (r *Repository) ListPatches(ctx context.Context, limit int) ([]entities.Patch, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, version, title, date, tags, status, created_at, rolled_back_at
		FROM patches
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying patches: %w", err)
	}
	defer rows.Close()

	patches := make([]entities.Patch, 0, 16)
	for rows.Next() {
		p, err := scanPatch(rows)
		if err != nil {
			return nil, err
		}
		patches = append(patches, *p)
	}
	return patches, rows.Err()
}

// MarkPatchRolledBack flags a patch as rolled back.
func (r *Repository) MarkPatchRolledBack(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE patches SET status = ?, rolled_back_at = ? WHERE id = ?`,
		string(entities.PatchRolledBack), at, id,
	)
	if err != nil {
		return fmt.Errorf("updating patch: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patch %s: %w", id, entities.ErrNotFound)
	}
	return nil
}

// FindChangesByTarget finds committed change records for one entity, oldest first.
func (r *Repository) FindChangesByTarget(ctx context.Context, category entities.Category, targetID string) ([]entities.ChangeRecord, error) {
	query := `
		SELECT id, target_id, name, field, category, change_type, diffs, created_at
		FROM change_records
		WHERE category = ? AND target_id = ?
		ORDER BY created_at, rowid
	`
	return r.queryChanges(ctx, query, string(category), targetID)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatch(row rowScanner) (*entities.Patch, error) {
	var p entities.Patch
	var status string
	var tags sql.NullString
	var rolledBackAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.Version,
		&p.Title,
		&p.Date,
		&tags,
		&status,
		&p.CreatedAt,
		&rolledBackAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning patch: %w", err)
	}

	p.Status = entities.PatchStatus(status)
	if rolledBackAt.Valid {
		at := rolledBackAt.Time
		p.RolledBackAt = &at
	}
	if tags.Valid && tags.String != "" && tags.String != "null" {
		if err := json.Unmarshal([]byte(tags.String), &p.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}
	return &p, nil
}

// queryChanges is a helper to execute change record queries.
func (r *Repository) queryChanges(ctx context.Context, query string, args ...any) ([]entities.ChangeRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying change records: %w", err)
	}
	defer rows.Close()

	changes := make([]entities.ChangeRecord, 0, 16)
	for rows.Next() {
		var c entities.ChangeRecord
		var name, field sql.NullString
		var category, changeType, diffs string

		if err := rows.Scan(
			&c.ID,
			&c.TargetID,
			&name,
			&field,
			&category,
			&changeType,
			&diffs,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning change record: %w", err)
		}

		c.Name = name.String
		c.Field = field.String
		c.Category = entities.Category(category)
		c.ChangeType = entities.ChangeType(changeType)
		if err := json.Unmarshal([]byte(diffs), &c.Diffs); err != nil {
			return nil, fmt.Errorf("unmarshaling diffs: %w", err)
		}
		if c.Diffs == nil {
			c.Diffs = []entities.DiffEntry{}
		}

		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action string, targetID string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var target sql.NullString
	if targetID != "" {
		target = sql.NullString{String: targetID, Valid: true}
	}

	query := `INSERT INTO audit_log (action, target_id, details) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, target, detailsJSON)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a specific target, newest first.
func (r *Repository) FindAuditLog(ctx context.Context, targetID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, target_id, details, created_at
		FROM audit_log
		WHERE target_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.queryAuditLog(ctx, query, targetID)
}

// FindAuditLogByAction finds audit log entries by action type, newest first.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, action, target_id, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var targetID, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&targetID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.TargetID = targetID.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
