package parsers

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLParser parses form state from a YAML mapping.
type YAMLParser struct{}

// Parse reads one YAML document from the reader. Values are converted to
// the shapes encoding/json would produce for the same data, so a YAML form
// compares equal to its JSON twin.
func (p *YAMLParser) Parse(r io.Reader) (map[string]any, error) {
	var raw any

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("parsing YAML: %w", errNotObject)
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	doc, ok := jsonShape(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsing YAML: %w", errNotObject)
	}
	return doc, nil
}

func jsonShape(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = jsonShape(child)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = jsonShape(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = jsonShape(t[i])
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return v
	}
}
