package entities

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an entity file or changelog record does not exist.
var ErrNotFound = errors.New("not found")

// Well-known entity field names.
const (
	FieldID           = "id"
	FieldEntityID     = "entity_id"
	FieldName         = "name"
	FieldAbilities    = "abilities"
	FieldClass        = "class"
	FieldHeroClass    = "hero_class"
	FieldLastModified = "last_modified"
)

// EntityName returns the display name of a raw entity document, or "" if it has none.
func EntityName(doc map[string]any) string {
	name, _ := doc[FieldName].(string)
	return name
}

// EntityID returns the stable identifier of a raw entity document.
// Documents written before entity_id existed carry only id.
func EntityID(doc map[string]any) string {
	if id, ok := doc[FieldID].(string); ok && id != "" {
		return id
	}
	id, _ := doc[FieldEntityID].(string)
	return id
}

// NormalizeFilename strips a trailing .json extension and surrounding whitespace.
func NormalizeFilename(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".json")
}
