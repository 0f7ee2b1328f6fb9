package entities

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DiffKind tags the variant of a DiffEntry.
type DiffKind string

const (
	// DiffEdit records a changed value at Path (LHS old, RHS new).
	DiffEdit DiffKind = "E"
	// DiffNew records a value added at Path (RHS).
	DiffNew DiffKind = "N"
	// DiffDeleted records a value removed from Path (LHS).
	DiffDeleted DiffKind = "D"
	// DiffArray records an element change at Index of the array at Path; Item holds the change.
	DiffArray DiffKind = "A"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object-key segment.
func Key(k string) Segment {
	return Segment{Key: k}
}

// Index returns an array-index segment.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// String renders the segment as it appears in a dotted path.
func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// MarshalJSON encodes keys as strings and indexes as numbers.
func (s Segment) MarshalJSON() ([]byte, error) {
	if s.IsIndex {
		return json.Marshal(s.Index)
	}
	return json.Marshal(s.Key)
}

// UnmarshalJSON accepts a string key or a non-negative integer index.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding path segment: %w", err)
	}
	switch v := raw.(type) {
	case string:
		*s = Key(v)
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return fmt.Errorf("invalid path index %v", v)
		}
		*s = Index(int(v))
	default:
		return fmt.Errorf("invalid path segment %s", string(data))
	}
	return nil
}

// Path locates a value inside an entity.
type Path []Segment

// String renders the path in dotted form, e.g. "abilities.passive.0.damage".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// Child returns a new path with seg appended; p is never modified.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Clone returns a copy of p that shares no backing array with it.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// ParsePath splits a dotted path; all-digit segments become indexes.
func ParsePath(dotted string) Path {
	if dotted == "" {
		return nil
	}
	parts := strings.Split(dotted, ".")
	path := make(Path, len(parts))
	for i, part := range parts {
		if n, err := strconv.Atoi(part); err == nil && n >= 0 && strconv.Itoa(n) == part {
			path[i] = Index(n)
			continue
		}
		path[i] = Key(part)
	}
	return path
}

// DiffEntry is one structural difference between two entity snapshots.
type DiffEntry struct {
	Kind  DiffKind   `json:"kind"`
	Path  Path       `json:"path,omitempty"`
	LHS   any        `json:"lhs,omitempty"`
	RHS   any        `json:"rhs,omitempty"`
	Index int        `json:"index,omitempty"`
	Item  *DiffEntry `json:"item,omitempty"`
}
