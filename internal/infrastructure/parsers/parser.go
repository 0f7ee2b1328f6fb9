// Package parsers provides parsers for form-state documents: the edited
// entity a user hands to the save and create commands.
package parsers

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// errNotObject is returned when a document's top level is not a mapping.
var errNotObject = errors.New("form state must be an object")

// Parser defines the interface for parsing a form-state document.
type Parser interface {
	Parse(r io.Reader) (map[string]any, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "yaml" (or "yml").
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "yaml", "yml":
		return &YAMLParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".yaml", ".yml":
		return &YAMLParser{}
	default:
		return nil
	}
}
