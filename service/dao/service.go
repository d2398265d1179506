package dao

import (
	"context"
)

// Service is the generic persistence contract shared by every durable
// collaborator (settings, relays, permission records, prompt journal).
// Implementations must be safe for concurrent use; the orchestrator is the
// only writer but reads interleave freely.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
