package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMutexAcquireRelease(t *testing.T) {
	m := NewMutex()
	ctx := context.Background()

	handle, err := m.Acquire(ctx)
	assert.NoError(t, err)
	assert.True(t, m.Locked())

	// Second release must be a no-op.
	assert.True(t, handle.Release())
	assert.False(t, handle.Release())
	assert.False(t, m.Locked())
}

func TestMutexTryAcquire(t *testing.T) {
	m := NewMutex()

	handle, ok := m.TryAcquire()
	assert.True(t, ok)

	_, ok = m.TryAcquire()
	assert.False(t, ok)

	handle.Release()
	_, ok = m.TryAcquire()
	assert.True(t, ok)
}

// TestMutexFIFO verifies waiters are served strictly in arrival order.
func TestMutexFIFO(t *testing.T) {
	m := NewMutex()
	ctx := context.Background()

	first, err := m.Acquire(ctx)
	assert.NoError(t, err)

	const waiters = 8
	var mu sync.Mutex
	var served []int
	var wg sync.WaitGroup
	ready := make(chan struct{}, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// Stagger arrivals so queue order is deterministic.
			for m.Waiting() != n {
				time.Sleep(time.Millisecond)
			}
			ready <- struct{}{}
			handle, err := m.Acquire(ctx)
			if err != nil {
				return
			}
			mu.Lock()
			served = append(served, n)
			mu.Unlock()
			handle.Release()
		}(i)
		<-ready
	}
	// All goroutines queued before the owner releases.
	for m.Waiting() != waiters {
		time.Sleep(time.Millisecond)
	}
	first.Release()
	wg.Wait()

	expected := make([]int, waiters)
	for i := range expected {
		expected[i] = i
	}
	assert.Equal(t, expected, served)
}

func TestMutexAcquireCancelled(t *testing.T) {
	m := NewMutex()
	ctx := context.Background()

	handle, err := m.Acquire(ctx)
	assert.NoError(t, err)

	cancellable, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		_, err := m.Acquire(cancellable)
		done <- err
	}()
	for m.Waiting() != 1 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, m.Waiting())

	// The cancelled waiter must not have corrupted the queue.
	handle.Release()
	next, err := m.Acquire(ctx)
	assert.NoError(t, err)
	next.Release()
}

// TestMutexNoUnlockedGap checks the direct handoff: between a release and the
// next waiter's wakeup the lock never reports free.
func TestMutexNoUnlockedGap(t *testing.T) {
	m := NewMutex()
	ctx := context.Background()

	handle, _ := m.Acquire(ctx)
	acquired := make(chan *Handle, 1)
	go func() {
		next, _ := m.Acquire(ctx)
		acquired <- next
	}()
	for m.Waiting() != 1 {
		time.Sleep(time.Millisecond)
	}
	handle.Release()
	assert.True(t, m.Locked())
	next := <-acquired
	assert.True(t, m.Locked())
	next.Release()
	assert.False(t, m.Locked())
}
