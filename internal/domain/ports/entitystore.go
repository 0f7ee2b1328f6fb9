// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/balance-core/internal/domain/entities"
)

// EntityStore reads and writes entity documents, one JSON file per entity.
// Read returns an error wrapping entities.ErrNotFound for missing files.
type EntityStore interface {
	// List returns the filenames (without extension) of a category, sorted.
	List(ctx context.Context, category entities.Category) ([]string, error)

	// Read decodes one entity document.
	Read(ctx context.Context, category entities.Category, filename string) (map[string]any, error)

	// ReadBytes returns one entity file's content unparsed.
	ReadBytes(ctx context.Context, category entities.Category, filename string) ([]byte, error)

	// Write replaces one entity file with data verbatim.
	Write(ctx context.Context, category entities.Category, filename string, data []byte) error

	// Delete removes one entity file.
	Delete(ctx context.Context, category entities.Category, filename string) error

	// Exists reports whether an entity file exists.
	Exists(ctx context.Context, category entities.Category, filename string) (bool, error)
}
