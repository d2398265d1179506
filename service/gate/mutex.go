package gate

import (
	"context"
	"sync"
)

// Mutex is a binary lock with a strict FIFO waiter queue. It serialises the
// human-facing prompt section: while one approval is awaiting its response no
// second prompt may become visible. Release hands the lock directly to the
// next waiter, so there is no unlocked window in which a late caller could
// overtake the queue.
type Mutex struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan *Handle
}

// Handle is proof of lock ownership; its Release is the only way to give the
// lock up. Releasing twice is a guarded no-op.
type Handle struct {
	mutex    *Mutex
	once     sync.Once
	released bool
}

// NewMutex returns an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Acquire returns a release handle once the caller owns the lock. When the
// lock is taken the caller joins the waiter queue and blocks until served in
// arrival order or ctx is cancelled, whichever comes first. A cancelled
// waiter is removed from the queue; if the handoff raced the cancellation
// the lock is passed on to the next waiter.
func (m *Mutex) Acquire(ctx context.Context) (*Handle, error) {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return &Handle{mutex: m}, nil
	}
	waiter := make(chan *Handle, 1)
	m.waiters = append(m.waiters, waiter)
	m.mu.Unlock()

	select {
	case handle := <-waiter:
		return handle, nil
	case <-ctx.Done():
		m.abandon(waiter)
		return nil, ctx.Err()
	}
}

// TryAcquire returns a handle only when the lock is free right now.
func (m *Mutex) TryAcquire() (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return nil, false
	}
	m.locked = true
	return &Handle{mutex: m}, true
}

// Locked reports whether the lock is currently held.
func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// Waiting returns the current queue length.
func (m *Mutex) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}

func (m *Mutex) abandon(waiter chan *Handle) {
	m.mu.Lock()
	for i, candidate := range m.waiters {
		if candidate == waiter {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			m.mu.Unlock()
			return
		}
	}
	m.mu.Unlock()
	// Not in the queue anymore: the handoff already happened. Pass the lock
	// along instead of holding it forever.
	if handle := <-waiter; handle != nil {
		handle.Release()
	}
}

// Release gives the lock up. It reports false when the handle was already
// used. The head waiter, when present, receives the lock directly.
func (h *Handle) Release() bool {
	released := false
	h.once.Do(func() {
		released = true
		h.mutex.handoff()
	})
	return released
}

func (m *Mutex) handoff() {
	m.mu.Lock()
	if len(m.waiters) == 0 {
		m.locked = false
		m.mu.Unlock()
		return
	}
	next := m.waiters[0]
	m.waiters = m.waiters[1:]
	m.mu.Unlock()
	next <- &Handle{mutex: m}
}
