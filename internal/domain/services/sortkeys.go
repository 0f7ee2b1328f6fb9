package services

import (
	"bytes"
	"encoding/json"
	"sort"
)

// priorityKeys lead every object, in this order.
var priorityKeys = []string{
	"$schema", "id", "entity_id", "name", "version", "date",
	"type", "class", "hero_class", "category",
}

// metadataKeys close every object, in this order.
var metadataKeys = []string{"last_modified"}

var (
	priorityRank = rankOf(priorityKeys)
	metadataRank = rankOf(metadataKeys)
)

func rankOf(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}

// KeyOrder returns keys in canonical order: priority keys, then the rest
// alphabetically, then metadata keys. The input slice is not modified.
func KeyOrder(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	sort.SliceStable(out, func(i, j int) bool {
		gi, ri := keyGroup(out[i])
		gj, rj := keyGroup(out[j])
		if gi != gj {
			return gi < gj
		}
		if gi == 1 {
			return out[i] < out[j]
		}
		return ri < rj
	})
	return out
}

func keyGroup(k string) (group, rank int) {
	if r, ok := priorityRank[k]; ok {
		return 0, r
	}
	if r, ok := metadataRank[k]; ok {
		return 2, r
	}
	return 1, 0
}

// OrderedObject is an object whose keys marshal in a fixed order.
type OrderedObject struct {
	Keys   []string
	Values map[string]any
}

// MarshalJSON writes the object with keys in o.Keys order.
func (o OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalNoEscape(o.Values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SortKeys returns a copy of v in which every object is an OrderedObject
// with canonical key order. Sorting an already sorted value is a no-op.
func SortKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return sortObject(t)
	case OrderedObject:
		return sortObject(t.Values)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = SortKeys(t[i])
		}
		return out
	default:
		return v
	}
}

func sortObject(m map[string]any) OrderedObject {
	keys := make([]string, 0, len(m))
	values := make(map[string]any, len(m))
	for k, child := range m {
		keys = append(keys, k)
		values[k] = SortKeys(child)
	}
	return OrderedObject{Keys: KeyOrder(keys), Values: values}
}

// MarshalSorted renders v as 2-space indented JSON with canonical key
// order and a trailing newline, the on-disk entity format.
func MarshalSorted(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(SortKeys(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
