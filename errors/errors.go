// Package errors defines all exported error sentinels for the perfectset library.
//
// This is the single source of truth for error values. Both the top-level
// perfectset package and the internal build packages import from here,
// ensuring errors.Is checks work across package boundaries.
package errors

import "errors"

// Build errors
var (
	ErrDuplicateKey   = errors.New("perfectset: duplicate key detected")
	ErrTooManyKeys    = errors.New("perfectset: key count exceeds maximum (2^32-1)")
	ErrBuildExhausted = errors.New("perfectset: build attempts exhausted")
	ErrInvalidOption  = errors.New("perfectset: invalid build option")
)

// Query errors
var (
	ErrNotInUniverse = errors.New("perfectset: key is not in the universe")
)
