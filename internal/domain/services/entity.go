package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ersonp/balance-core/internal/domain/entities"
	"github.com/ersonp/balance-core/internal/domain/ports"
)

// ChangeQueue accepts change records produced by entity edits.
type ChangeQueue interface {
	Queue(ctx context.Context, change *entities.ChangeRecord) error
}

// EntityService loads entities for editing and persists edits as delta saves.
type EntityService struct {
	store   ports.EntityStore
	queue   ChangeQueue
	cache   *EntityCache
	log     logrus.FieldLogger
	timeNow func() time.Time
}

// NewEntityService creates a new EntityService.
func NewEntityService(store ports.EntityStore, queue ChangeQueue, cache *EntityCache, log logrus.FieldLogger) *EntityService {
	if cache == nil {
		cache = NewEntityCache()
	}
	return &EntityService{
		store:   store,
		queue:   queue,
		cache:   cache,
		log:     log,
		timeNow: time.Now,
	}
}

// SaveRequest carries an edited form back to the service.
type SaveRequest struct {
	Category entities.Category
	Filename string
	// Initial is the editor-form snapshot the form was seeded from.
	Initial map[string]any
	// Form is the current editor state.
	Form map[string]any
}

// SaveResult describes a completed save.
type SaveResult struct {
	Filename      string
	ChangedFields []string
	Change        *entities.ChangeRecord
}

// List returns the entity filenames of a category.
func (s *EntityService) List(ctx context.Context, category entities.Category) ([]string, error) {
	if names, ok := s.cache.GetList(category, ModeRaw); ok {
		return names, nil
	}
	names, err := s.store.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category, err)
	}
	s.cache.PutList(category, ModeRaw, names)
	return names, nil
}

// LoadRaw returns an entity exactly as stored on disk.
func (s *EntityService) LoadRaw(ctx context.Context, category entities.Category, filename string) (map[string]any, error) {
	if doc, ok := s.cache.GetEntity(category, ModeRaw, filename); ok {
		return doc, nil
	}
	doc, err := s.store.Read(ctx, category, filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", category, filename, err)
	}
	s.cache.PutEntity(category, ModeRaw, filename, doc)
	return doc, nil
}

// LoadForEditing returns an entity prepared for the editor form.
func (s *EntityService) LoadForEditing(ctx context.Context, category entities.Category, filename string) (map[string]any, error) {
	if doc, ok := s.cache.GetEntity(category, ModeEditor, filename); ok {
		return doc, nil
	}
	raw, err := s.LoadRaw(ctx, category, filename)
	if err != nil {
		return nil, err
	}
	doc := PrepareForEditing(category, raw)
	s.cache.PutEntity(category, ModeEditor, filename, doc)
	return doc, nil
}

// Save persists only the fields the user changed, merged onto the current
// disk snapshot. Returns ErrNothingToSave when the form matches Initial.
func (s *EntityService) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	raw, err := s.store.Read(ctx, req.Category, req.Filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", req.Category, req.Filename, err)
	}

	delta, err := ComputeDelta(raw, req.Initial, req.Form, s.timeNow())
	if err != nil {
		return nil, fmt.Errorf("computing delta: %w", err)
	}
	if !delta.HasChanges() {
		return nil, ErrNothingToSave
	}

	change, err := s.persist(ctx, req.Category, req.Filename, raw, delta.Payload)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"category": req.Category,
		"filename": req.Filename,
		"fields":   delta.ChangedFields,
	}).Info("saved entity")

	return &SaveResult{
		Filename:      req.Filename,
		ChangedFields: delta.ChangedFields,
		Change:        change,
	}, nil
}

// Create writes a brand-new entity unconditionally and queues an add change.
func (s *EntityService) Create(ctx context.Context, category entities.Category, filename string, form map[string]any) (*SaveResult, error) {
	exists, err := s.store.Exists(ctx, category, filename)
	if err != nil {
		return nil, fmt.Errorf("checking %s/%s: %w", category, filename, err)
	}
	if exists {
		return nil, fmt.Errorf("%s/%s: %w", category, filename, ErrAlreadyExists)
	}

	payload := StripInternal(CloneEntity(form))
	if payload == nil {
		payload = map[string]any{}
	}
	payload[entities.FieldLastModified] = s.timeNow().UTC().Format(time.RFC3339)

	change, err := s.persist(ctx, category, filename, nil, payload)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"category": category, "filename": filename}).Info("created entity")
	return &SaveResult{Filename: filename, ChangedFields: sortedKeys(payload), Change: change}, nil
}

// SetField patches one dotted path of a stored entity, for direct field
// edits made outside the form.
func (s *EntityService) SetField(ctx context.Context, category entities.Category, filename, path string, value any) (*SaveResult, error) {
	raw, err := s.store.Read(ctx, category, filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", category, filename, err)
	}

	updated := CloneEntity(raw)
	if err := ApplyPathChange(s.log, updated, path, value); err != nil {
		return nil, err
	}
	updated[entities.FieldLastModified] = s.timeNow().UTC().Format(time.RFC3339)

	change, err := s.persist(ctx, category, filename, raw, updated)
	if err != nil {
		return nil, err
	}
	return &SaveResult{Filename: filename, ChangedFields: []string{path}, Change: change}, nil
}

// Delete removes an entity file and queues a delete change.
func (s *EntityService) Delete(ctx context.Context, category entities.Category, filename string) (*entities.ChangeRecord, error) {
	raw, err := s.store.Read(ctx, category, filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", category, filename, err)
	}
	if err := s.store.Delete(ctx, category, filename); err != nil {
		return nil, fmt.Errorf("deleting %s/%s: %w", category, filename, err)
	}
	s.cache.Invalidate(category, filename)

	change, err := BuildSlimChange(filename, entities.EntityName(raw), entities.EntityField, category, raw, nil)
	if err != nil {
		return nil, err
	}
	if err := s.queue.Queue(ctx, change); err != nil {
		return nil, fmt.Errorf("queueing change: %w", err)
	}
	return change, nil
}

// Format rewrites an entity file in canonical key order without changing
// any value. Reports whether the file content changed.
func (s *EntityService) Format(ctx context.Context, category entities.Category, filename string) (bool, error) {
	current, err := s.store.ReadBytes(ctx, category, filename)
	if err != nil {
		return false, fmt.Errorf("reading %s/%s: %w", category, filename, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(current, &doc); err != nil {
		return false, fmt.Errorf("decoding %s/%s: %w", category, filename, err)
	}
	data, err := MarshalSorted(doc)
	if err != nil {
		return false, fmt.Errorf("encoding %s/%s: %w", category, filename, err)
	}
	if bytes.Equal(current, data) {
		return false, nil
	}

	if err := s.store.Write(ctx, category, filename, data); err != nil {
		return false, fmt.Errorf("writing %s/%s: %w", category, filename, err)
	}
	s.cache.Invalidate(category, filename)
	return true, nil
}

// persist writes payload in canonical key order and queues the slim change
// between before and payload. A change with no diff entries is not queued.
func (s *EntityService) persist(ctx context.Context, category entities.Category, filename string, before, payload map[string]any) (*entities.ChangeRecord, error) {
	data, err := MarshalSorted(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s/%s: %w", category, filename, err)
	}
	if err := s.store.Write(ctx, category, filename, data); err != nil {
		return nil, fmt.Errorf("writing %s/%s: %w", category, filename, err)
	}
	s.cache.Invalidate(category, filename)

	change, err := BuildSlimChange(filename, entities.EntityName(payload), entities.EntityField, category, before, payload)
	if err != nil {
		return nil, err
	}
	if change.ChangeType == entities.ChangeEdit && len(change.Diffs) == 0 {
		return change, nil
	}
	if err := s.queue.Queue(ctx, change); err != nil {
		return nil, fmt.Errorf("queueing change: %w", err)
	}
	return change, nil
}
