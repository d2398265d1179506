package emitter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOnEmit(t *testing.T) {
	svc := New()
	ctx := context.Background()

	var got []interface{}
	var mu sync.Mutex
	unsubscribe := svc.On("topic.a", func(_ context.Context, payload interface{}) {
		mu.Lock()
		got = append(got, payload)
		mu.Unlock()
	})

	svc.Emit(ctx, "topic.a", 1)
	svc.Emit(ctx, "topic.b", 2) // different topic, not delivered
	svc.Emit(ctx, "topic.a", 3)
	assert.Equal(t, []interface{}{1, 3}, got)

	unsubscribe()
	svc.Emit(ctx, "topic.a", 4)
	assert.Equal(t, []interface{}{1, 3}, got)
}

// TestOnce verifies a one-shot handler fires at most once even when the
// topic is re-emitted from inside the handler.
func TestOnce(t *testing.T) {
	svc := New()
	ctx := context.Background()

	var calls int32
	svc.Once("topic.a", func(ctx context.Context, _ interface{}) {
		atomic.AddInt32(&calls, 1)
		svc.Emit(ctx, "topic.a", "again")
	})

	svc.Emit(ctx, "topic.a", "first")
	svc.Emit(ctx, "topic.a", "second")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, svc.Size("topic.a"))
}

func TestWithin(t *testing.T) {
	svc := New()
	ctx := context.Background()

	var calls int32
	svc.Within("topic.a", func(context.Context, interface{}) {
		atomic.AddInt32(&calls, 1)
	}, 10*time.Millisecond)

	// Deadline passes without an emission; the handler must be gone.
	time.Sleep(30 * time.Millisecond)
	svc.Emit(ctx, "topic.a", nil)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, svc.Size("topic.a"))
}

func TestWithinBeforeDeadline(t *testing.T) {
	svc := New()
	ctx := context.Background()

	done := make(chan interface{}, 1)
	svc.Within("topic.a", func(_ context.Context, payload interface{}) {
		done <- payload
	}, time.Second)

	svc.Emit(ctx, "topic.a", "value")
	assert.Equal(t, "value", <-done)
}

// TestWithinImmediateExpiry registers deadline-bound handlers whose timers
// fire while emissions are in flight; run with -race this pins the timer
// publication to the registry lock.
func TestWithinImmediateExpiry(t *testing.T) {
	svc := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.Within("topic.a", func(context.Context, interface{}) {}, time.Nanosecond)
		}()
		go func() {
			defer wg.Done()
			svc.Emit(ctx, "topic.a", nil)
		}()
	}
	wg.Wait()

	// Every subscription was either emitted once or expired.
	assert.Eventually(t, func() bool { return svc.Size("topic.a") == 0 },
		time.Second, 5*time.Millisecond)
}

func TestWildcard(t *testing.T) {
	svc := New()
	ctx := context.Background()

	var topics []interface{}
	svc.On(Wildcard, func(_ context.Context, payload interface{}) {
		topics = append(topics, payload)
	})

	svc.Emit(ctx, "topic.a", "a")
	svc.Emit(ctx, "topic.b", "b")
	assert.Equal(t, []interface{}{"a", "b"}, topics)
}

func TestHandlerPanicContained(t *testing.T) {
	svc := New()
	ctx := context.Background()

	svc.On("topic.a", func(context.Context, interface{}) {
		panic("boom")
	})
	var delivered bool
	svc.On("topic.a", func(context.Context, interface{}) {
		delivered = true
	})

	assert.NotPanics(t, func() { svc.Emit(ctx, "topic.a", nil) })
	assert.True(t, delivered)
}
