package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// EntityStore is an in-memory implementation of ports.EntityStore.
// Files are kept as raw bytes keyed by "category/filename".
type EntityStore struct {
	mu     sync.Mutex
	Files  map[string][]byte
	Writes int
	Err    error
}

// NewEntityStore creates a new mock EntityStore.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		Files: make(map[string][]byte),
	}
}

func storeKey(category entities.Category, filename string) string {
	return string(category) + "/" + filename
}

// Put seeds a file by encoding doc as JSON.
func (m *EntityStore) Put(category entities.Category, filename string, doc map[string]any) {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("mocks: encoding %s: %v", filename, err))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[storeKey(category, filename)] = data
}

// Doc decodes a stored file, or returns nil if it does not exist.
func (m *EntityStore) Doc(category entities.Category, filename string) map[string]any {
	m.mu.Lock()
	data, ok := m.Files[storeKey(category, filename)]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		panic(fmt.Sprintf("mocks: decoding %s: %v", filename, err))
	}
	return doc
}

// List returns the filenames of a category, sorted.
func (m *EntityStore) List(_ context.Context, category entities.Category) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := string(category) + "/"
	names := make([]string, 0)
	for k := range m.Files {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			names = append(names, k[len(prefix):])
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read decodes one entity document.
func (m *EntityStore) Read(ctx context.Context, category entities.Category, filename string) (map[string]any, error) {
	data, err := m.ReadBytes(ctx, category, filename)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}
	return doc, nil
}

// ReadBytes returns one entity file's content.
func (m *EntityStore) ReadBytes(_ context.Context, category entities.Category, filename string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Files[storeKey(category, filename)]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", category, filename, entities.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Write replaces one entity file.
func (m *EntityStore) Write(_ context.Context, category entities.Category, filename string, data []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[storeKey(category, filename)] = append([]byte(nil), data...)
	m.Writes++
	return nil
}

// Delete removes one entity file.
func (m *EntityStore) Delete(_ context.Context, category entities.Category, filename string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := storeKey(category, filename)
	if _, ok := m.Files[key]; !ok {
		return fmt.Errorf("%s/%s: %w", category, filename, entities.ErrNotFound)
	}
	delete(m.Files, key)
	return nil
}

// Exists reports whether an entity file exists.
func (m *EntityStore) Exists(_ context.Context, category entities.Category, filename string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Files[storeKey(category, filename)]
	return ok, nil
}
