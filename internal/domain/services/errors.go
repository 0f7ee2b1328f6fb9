package services

import "errors"

var (
	// ErrUnsupportedValue is returned when a value is not JSON-like.
	ErrUnsupportedValue = errors.New("unsupported value")
	// ErrUnsafePath is returned when a dotted path names a prototype-sensitive segment.
	ErrUnsafePath = errors.New("unsafe path")
	// ErrInvalidPath is returned for empty paths or empty path segments.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNothingToSave signals that the form matches what was loaded.
	ErrNothingToSave = errors.New("nothing to save")
	// ErrAlreadyExists is returned when creating an entity whose file exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNothingToCommit is returned when committing an empty change queue.
	ErrNothingToCommit = errors.New("nothing to commit")
	// ErrAlreadyRolledBack is returned when rolling back a patch twice.
	ErrAlreadyRolledBack = errors.New("patch already rolled back")
)
