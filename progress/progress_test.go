package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateAndSnapshot(t *testing.T) {
	tracker := New()
	tracker.Update(Delta{Submitted: 2, Prompted: 1, PendingPrompts: 1})
	tracker.Update(Delta{Approved: 1, Executed: 1, PendingPrompts: -1})

	snapshot := tracker.Snapshot()
	assert.Equal(t, 2, snapshot.SubmittedTasks)
	assert.Equal(t, 1, snapshot.PromptedTasks)
	assert.Equal(t, 1, snapshot.ApprovedTasks)
	assert.Equal(t, 1, snapshot.ExecutedTasks)
	assert.Equal(t, 0, snapshot.PendingPrompts)
}

func TestOnChange(t *testing.T) {
	tracker := New()
	var observed []int
	tracker.OnChange(func(s Snapshot) { observed = append(observed, s.SubmittedTasks) })
	tracker.Update(Delta{Submitted: 1})
	tracker.Update(Delta{Submitted: 1})
	assert.Equal(t, []int{1, 2}, observed)
}

func TestNilTracker(t *testing.T) {
	var tracker *Progress
	assert.NotPanics(t, func() { tracker.Update(Delta{Submitted: 1}) })
	assert.Equal(t, Snapshot{}, tracker.Snapshot())
}

func TestContextHelpers(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx, tracker := WithNewTracker(context.Background(), "test", nil)
	fromCtx, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, tracker, fromCtx)
	assert.Equal(t, "test", tracker.Snapshot().Instance)
}
