package services

import (
	"encoding/json"

	"github.com/brunoga/deep"
)

// cloneValue deep-copies a JSON-like value. Scalars are returned as is.
func cloneValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		out, err := deep.Copy(v)
		if err != nil {
			return v
		}
		return out
	default:
		return v
	}
}

// CloneEntity returns a deep copy of an entity document that shares no
// containers with the input. A nil map clones to nil.
func CloneEntity(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out, err := deep.Copy(doc)
	if err != nil {
		return doc
	}
	return out
}

// toFloat reports the numeric value of v for every number type a decoder
// (encoding/json, yaml.v3) or a caller literal can produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func isZeroNumber(v any) bool {
	f, ok := toFloat(v)
	return ok && f == 0
}
