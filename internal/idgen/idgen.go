package idgen

import "github.com/google/uuid"

// NewFunc produces identifiers; tests override it for determinism.
var NewFunc = func() string { return uuid.New().String() }

// New returns a globally unique identifier.
func New() string { return NewFunc() }
