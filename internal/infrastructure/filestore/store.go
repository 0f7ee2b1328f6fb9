// Package filestore implements ports.EntityStore on the local filesystem:
// <root>/<category>/<name>.json, one document per entity.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// ErrInvalidFilename is returned for names that would escape the category directory.
var ErrInvalidFilename = errors.New("invalid filename")

const fileExt = ".json"

// Store is a directory-backed entity store.
type Store struct {
	root string
}

// New creates a Store rooted at dir. The directory is created lazily on first write.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Init creates one directory per category.
func (s *Store) Init() error {
	for _, category := range entities.Categories {
		if err := os.MkdirAll(filepath.Join(s.root, string(category)), 0755); err != nil {
			return fmt.Errorf("creating %s directory: %w", category, err)
		}
	}
	return nil
}

func (s *Store) path(category entities.Category, filename string) (string, error) {
	if !category.IsValid() {
		return "", fmt.Errorf("invalid category %q", category)
	}
	name := entities.NormalizeFilename(filename)
	if name == "" || name == "." || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return filepath.Join(s.root, string(category), name+fileExt), nil
}

// List returns the entity names of a category, without extension, sorted.
// A missing category directory lists as empty.
func (s *Store) List(_ context.Context, category entities.Category) ([]string, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("invalid category %q", category)
	}
	entries, err := os.ReadDir(filepath.Join(s.root, string(category)))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s directory: %w", category, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Read decodes one entity document.
func (s *Store) Read(ctx context.Context, category entities.Category, filename string) (map[string]any, error) {
	data, err := s.ReadBytes(ctx, category, filename)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", category, filename, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decoding %s/%s: not a JSON object", category, filename)
	}
	return doc, nil
}

// ReadBytes returns one entity file's content.
func (s *Store) ReadBytes(_ context.Context, category entities.Category, filename string) ([]byte, error) {
	p, err := s.path(category, filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", category, filename, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", category, filename, err)
	}
	return data, nil
}

// Write replaces one entity file. The content goes to a temporary file in
// the same directory first and is renamed into place, so readers never see
// a partial document.
func (s *Store) Write(_ context.Context, category entities.Category, filename string, data []byte) error {
	p, err := s.path(category, filename)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", category, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*"+fileExt)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("replacing %s/%s: %w", category, filename, err)
	}
	return nil
}

// Delete removes one entity file.
func (s *Store) Delete(_ context.Context, category entities.Category, filename string) error {
	p, err := s.path(category, filename)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s/%s: %w", category, filename, entities.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", category, filename, err)
	}
	return nil
}

// Exists reports whether an entity file exists.
func (s *Store) Exists(_ context.Context, category entities.Category, filename string) (bool, error) {
	p, err := s.path(category, filename)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s/%s: %w", category, filename, err)
	}
	return true, nil
}
