package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses form state from a JSON object.
type JSONParser struct{}

// Parse reads one JSON object from the reader.
func (p *JSONParser) Parse(r io.Reader) (map[string]any, error) {
	var doc map[string]any

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parsing JSON: %w", errNotObject)
	}

	return doc, nil
}
