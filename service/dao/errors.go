package dao

import "errors"

// Sentinel errors shared by every store implementation - settings, relays,
// permission records and the prompt journal. Callers branch with errors.Is
// rather than matching message text.

var (
	// ErrNotFound is returned when no entity exists under the requested key.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates the supplied key is empty or otherwise unusable.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")
)
