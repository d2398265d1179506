package gate

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrPromptTimeout indicates no response arrived before the deadline.
	ErrPromptTimeout = errors.New("gate: prompt timed out")

	// ErrPromptCancelled indicates the prompt surface went away without
	// answering and the waiter was told to stop.
	ErrPromptCancelled = errors.New("gate: prompt cancelled")

	// ErrDuplicateID rejects a second registration under a live id.
	ErrDuplicateID = errors.New("gate: duplicate prompt id")
)

type resolution[T any] struct {
	value     *T
	err       error
	delivered chan struct{}
}

// Resolvers correlates a pending prompt id with exactly one suspended waiter.
// It replaces dynamic event-name keying for the approval path with an
// explicit one-to-one table: a response resolves at most one waiter, a second
// response for the same id goes nowhere, and every registration carries a
// deadline so an unanswered prompt cannot suspend its flow forever.
type Resolvers[T any] struct {
	mu      sync.Mutex
	pending map[string]*resolution[T]
}

// NewResolvers creates an empty resolver table.
func NewResolvers[T any]() *Resolvers[T] {
	return &Resolvers[T]{pending: make(map[string]*resolution[T])}
}

// Register reserves id and returns an await function that suspends the caller
// until one of: a response is delivered, Cancel is invoked, the timeout
// elapses (timeout <= 0 disables it), or ctx is cancelled. The returned
// cancel function withdraws the registration as ErrPromptCancelled.
func (r *Resolvers[T]) Register(ctx context.Context, id string, timeout time.Duration) (await func() (*T, error), cancel func(), err error) {
	r.mu.Lock()
	if _, ok := r.pending[id]; ok {
		r.mu.Unlock()
		return nil, nil, ErrDuplicateID
	}
	pending := &resolution[T]{delivered: make(chan struct{})}
	r.pending[id] = pending
	r.mu.Unlock()

	var deadline *time.Timer
	var timer <-chan time.Time
	if timeout > 0 {
		deadline = time.NewTimer(timeout)
		timer = deadline.C
	}

	await = func() (*T, error) {
		if deadline != nil {
			defer deadline.Stop()
		}
		select {
		case <-pending.delivered:
			return pending.value, pending.err
		case <-timer:
			if r.settle(id, nil, ErrPromptTimeout) {
				return nil, ErrPromptTimeout
			}
			<-pending.delivered
			return pending.value, pending.err
		case <-ctx.Done():
			if r.settle(id, nil, ctx.Err()) {
				return nil, ctx.Err()
			}
			<-pending.delivered
			return pending.value, pending.err
		}
	}
	cancel = func() { r.settle(id, nil, ErrPromptCancelled) }
	return await, cancel, nil
}

// Resolve delivers a response to the waiter registered under id. It reports
// false when the id is unknown - already consumed, timed out, or never
// registered; per the protocol contract that case is silent.
func (r *Resolvers[T]) Resolve(id string, value *T) bool {
	return r.settle(id, value, nil)
}

// Cancel withdraws a pending registration, resuming its waiter with
// ErrPromptCancelled.
func (r *Resolvers[T]) Cancel(id string) bool {
	return r.settle(id, nil, ErrPromptCancelled)
}

func (r *Resolvers[T]) settle(id string, value *T, err error) bool {
	r.mu.Lock()
	pending, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	pending.value = value
	pending.err = err
	close(pending.delivered)
	return true
}

// Pending returns ids with a registered waiter, for diagnostics.
func (r *Resolvers[T]) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.pending))
	for id := range r.pending {
		out = append(out, id)
	}
	return out
}
