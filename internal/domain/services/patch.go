package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/domain/ports"
)

// Audit log actions.
const (
	ActionChangeQueued    = "change.queued"
	ActionPatchCommitted  = "patch.committed"
	ActionPatchRolledBack = "patch.rolled_back"
)

// generateID returns a new UUID string.
var generateID = func() string {
	return uuid.New().String()
}

// PatchService manages the change queue, patch commits and rollback.
type PatchService struct {
	relationalDB ports.RelationalDB
	store        ports.EntityStore
	cache        *EntityCache
	log          logrus.FieldLogger
	timeNow      func() time.Time
}

// NewPatchService creates a new PatchService.
// The cache, when shared with an EntityService, is invalidated on rollback.
func NewPatchService(relationalDB ports.RelationalDB, store ports.EntityStore, cache *EntityCache, log logrus.FieldLogger) *PatchService {
	if cache == nil {
		cache = NewEntityCache()
	}
	return &PatchService{
		relationalDB: relationalDB,
		store:        store,
		cache:        cache,
		log:          log,
		timeNow:      time.Now,
	}
}

// PatchMeta describes a patch about to be committed.
type PatchMeta struct {
	Version string
	Title   string
	// Date defaults to today (YYYY-MM-DD) when empty.
	Date string
	Tags []string
}

func (m PatchMeta) validate() error {
	if strings.TrimSpace(m.Version) == "" {
		return errors.New("patch version is required")
	}
	if strings.TrimSpace(m.Title) == "" {
		return errors.New("patch title is required")
	}
	return nil
}

// RollbackResult reports what a rollback did.
type RollbackResult struct {
	PatchID  string
	Reverted []string
	Removed  []string
	// Skipped lists targets whose changes were not reverted: deletes, for
	// which no snapshot is kept, and edits the entity no longer reflects.
	Skipped []string
}

// Queue stores a change record until the next commit.
func (s *PatchService) Queue(ctx context.Context, change *entities.ChangeRecord) error {
	if change.ID == "" {
		change.ID = generateID()
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = s.timeNow()
	}
	if err := s.relationalDB.SavePendingChange(ctx, change); err != nil {
		return fmt.Errorf("saving pending change: %w", err)
	}
	if err := s.relationalDB.LogAction(ctx, ActionChangeQueued, change.TargetID, map[string]any{
		"category":    string(change.Category),
		"change_type": string(change.ChangeType),
		"diffs":       len(change.Diffs),
	}); err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// Pending returns the queued change records, oldest first.
func (s *PatchService) Pending(ctx context.Context) ([]entities.ChangeRecord, error) {
	return s.relationalDB.ListPendingChanges(ctx)
}

// Discard drops one queued change record.
func (s *PatchService) Discard(ctx context.Context, id string) error {
	return s.relationalDB.DeletePendingChange(ctx, id)
}

// Commit bundles every queued change into a new patch and clears the queue.
func (s *PatchService) Commit(ctx context.Context, meta PatchMeta) (*entities.Patch, error) {
	pending, err := s.relationalDB.ListPendingChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pending changes: %w", err)
	}
	if len(pending) == 0 {
		return nil, ErrNothingToCommit
	}

	ids := make([]string, len(pending))
	for i := range pending {
		ids[i] = pending[i].ID
	}
	return s.commit(ctx, meta, pending, ids)
}

// CommitChanges bundles an ad-hoc list of change records into a new patch,
// leaving the queue untouched.
func (s *PatchService) CommitChanges(ctx context.Context, meta PatchMeta, changes []entities.ChangeRecord) (*entities.Patch, error) {
	if len(changes) == 0 {
		return nil, ErrNothingToCommit
	}
	return s.commit(ctx, meta, changes, nil)
}

func (s *PatchService) commit(ctx context.Context, meta PatchMeta, changes []entities.ChangeRecord, consumed []string) (*entities.Patch, error) {
	if err := meta.validate(); err != nil {
		return nil, err
	}

	now := s.timeNow()
	date := meta.Date
	if date == "" {
		date = now.Format(time.DateOnly)
	}

	patch := &entities.Patch{
		ID:        generateID(),
		Version:   strings.TrimSpace(meta.Version),
		Title:     strings.TrimSpace(meta.Title),
		Date:      date,
		Tags:      meta.Tags,
		Status:    entities.PatchCommitted,
		Changes:   make([]entities.ChangeRecord, len(changes)),
		CreatedAt: now,
	}
	for i := range changes {
		patch.Changes[i] = changes[i]
		if patch.Changes[i].ID == "" {
			patch.Changes[i].ID = generateID()
		}
		if patch.Changes[i].CreatedAt.IsZero() {
			patch.Changes[i].CreatedAt = now
		}
	}

	if err := s.relationalDB.SavePatch(ctx, patch, consumed); err != nil {
		return nil, fmt.Errorf("saving patch: %w", err)
	}
	if err := s.relationalDB.LogAction(ctx, ActionPatchCommitted, patch.ID, map[string]any{
		"version": patch.Version,
		"changes": len(patch.Changes),
	}); err != nil {
		return nil, fmt.Errorf("logging action: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"patch":   patch.ID,
		"version": patch.Version,
		"changes": len(patch.Changes),
	}).Info("committed patch")
	return patch, nil
}

// List returns recent patches, newest first.
func (s *PatchService) List(ctx context.Context, limit int) ([]entities.Patch, error) {
	return s.relationalDB.ListPatches(ctx, limit)
}

// Get returns one patch with its change records.
func (s *PatchService) Get(ctx context.Context, id string) (*entities.Patch, error) {
	patch, err := s.relationalDB.FindPatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding patch: %w", err)
	}
	if patch == nil {
		return nil, fmt.Errorf("patch %s: %w", id, entities.ErrNotFound)
	}
	return patch, nil
}

// History returns the committed change records of one entity.
func (s *PatchService) History(ctx context.Context, category entities.Category, filename string) ([]entities.ChangeRecord, error) {
	return s.relationalDB.FindChangesByTarget(ctx, category, filename)
}

// Rollback reverts a patch's changes, last change first. Edits are reverted
// by applying their inverse diffs to the normalized current entity; entities
// the patch added are removed. Deletes are skipped since no snapshot exists,
// as are edits whose values the entity no longer holds. File writes are not
// transactional, but a failed rollback can be retried: reverted edits are
// skipped and removals ignore missing files.
func (s *PatchService) Rollback(ctx context.Context, id string) (*RollbackResult, error) {
	patch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status == entities.PatchRolledBack {
		return nil, fmt.Errorf("patch %s: %w", id, ErrAlreadyRolledBack)
	}

	result := &RollbackResult{PatchID: patch.ID}
	for i := len(patch.Changes) - 1; i >= 0; i-- {
		change := &patch.Changes[i]
		target := string(change.Category) + "/" + change.TargetID
		s.cache.Invalidate(change.Category, change.TargetID)

		switch change.ChangeType {
		case entities.ChangeAdd:
			if err := s.store.Delete(ctx, change.Category, change.TargetID); err != nil && !errors.Is(err, entities.ErrNotFound) {
				return nil, fmt.Errorf("removing %s: %w", target, err)
			}
			result.Removed = append(result.Removed, target)
		case entities.ChangeEdit:
			reverted, err := s.revertEdit(ctx, change)
			if err != nil {
				return nil, fmt.Errorf("reverting %s: %w", target, err)
			}
			if !reverted {
				s.log.WithFields(logrus.Fields{
					"patch":  patch.ID,
					"target": target,
					"change": change.ID,
				}).Warn("entity no longer holds the patched values, skipping")
				result.Skipped = append(result.Skipped, target)
			} else {
				result.Reverted = append(result.Reverted, target)
			}
		default:
			s.log.WithFields(logrus.Fields{
				"patch":       patch.ID,
				"target":      target,
				"change_type": change.ChangeType,
			}).Warn("change cannot be rolled back")
			result.Skipped = append(result.Skipped, target)
		}
	}

	now := s.timeNow()
	if err := s.relationalDB.MarkPatchRolledBack(ctx, patch.ID, now); err != nil {
		return nil, fmt.Errorf("marking patch rolled back: %w", err)
	}
	if err := s.relationalDB.LogAction(ctx, ActionPatchRolledBack, patch.ID, map[string]any{
		"reverted": len(result.Reverted),
		"removed":  len(result.Removed),
		"skipped":  len(result.Skipped),
	}); err != nil {
		return nil, fmt.Errorf("logging action: %w", err)
	}
	return result, nil
}

// revertEdit applies the inverse of change to the stored entity. It reports
// false, leaving the file alone, when the entity no longer holds the values
// the change produced: already reverted by an interrupted rollback, or
// edited again since.
func (s *PatchService) revertEdit(ctx context.Context, change *entities.ChangeRecord) (bool, error) {
	raw, err := s.store.Read(ctx, change.Category, change.TargetID)
	if err != nil {
		return false, err
	}
	current := NormalizeEntity(raw)
	if !diffsApplied(current, change.Diffs) {
		return false, nil
	}
	RevertAll(current, change.Diffs)
	current[entities.FieldLastModified] = s.timeNow().UTC().Format(time.RFC3339)

	data, err := MarshalSorted(current)
	if err != nil {
		return false, err
	}
	return true, s.store.Write(ctx, change.Category, change.TargetID, data)
}
