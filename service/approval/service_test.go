package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskgate/taskgate/internal/clock"
	"github.com/taskgate/taskgate/model/task"
	approval "github.com/taskgate/taskgate/service/approval"
	approvalmem "github.com/taskgate/taskgate/service/approval/memory"
	"github.com/taskgate/taskgate/service/dao"
)

// TestPermissionsLookupLatest verifies the append-only contract: a later
// decision for the same task type supersedes earlier ones without removing
// them.
func TestPermissionsLookupLatest(t *testing.T) {
	svc := approvalmem.NewPermissions()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	at := func(offset time.Duration) {
		clock.NowFunc = func() time.Time { return base.Add(offset) }
	}
	defer func() { clock.NowFunc = time.Now }()

	at(0)
	_, err := svc.Append(ctx, "settings", false, true)
	assert.NoError(t, err)
	at(time.Minute)
	_, err = svc.Append(ctx, "settings", true, true)
	assert.NoError(t, err)
	at(2 * time.Minute)
	_, err = svc.Append(ctx, "relay", false, true)
	assert.NoError(t, err)

	record, err := svc.Lookup(ctx, "settings")
	assert.NoError(t, err)
	assert.True(t, record.Approved)

	record, err = svc.Lookup(ctx, "relay")
	assert.NoError(t, err)
	assert.False(t, record.Approved)

	record, err = svc.Lookup(ctx, "unknown")
	assert.NoError(t, err)
	assert.Nil(t, record)

	// History is retained.
	records, err := svc.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestPermissionsListFiltered(t *testing.T) {
	svc := approvalmem.NewPermissions()
	ctx := context.Background()

	_, _ = svc.Append(ctx, "settings", true, true)
	_, _ = svc.Append(ctx, "relay", false, true)

	records, err := svc.List(ctx, dao.NewParameter("TaskType", "relay"))
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "relay", records[0].TaskType)
}

func TestPermissionsAppendValidation(t *testing.T) {
	svc := approvalmem.NewPermissions()
	_, err := svc.Append(context.Background(), "", true, true)
	assert.Error(t, err)
}

func TestJournal(t *testing.T) {
	journal := approvalmem.NewJournal()
	ctx := context.Background()

	assert.Error(t, journal.Record(ctx, nil))
	assert.Error(t, journal.Record(ctx, &approval.Request{}))

	request := &approval.Request{
		ID:        "p-1",
		Task:      &task.Task{Kind: task.KindSettings, Key: "theme"},
		CreatedAt: time.Now(),
	}
	assert.NoError(t, journal.Record(ctx, request))

	pending, err := journal.Pending(ctx)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, "p-1", pending[0].ID)

	assert.NoError(t, journal.Resolve(ctx, "p-1"))
	pending, err = journal.Pending(ctx)
	assert.NoError(t, err)
	assert.Empty(t, pending)

	// Resolving an unknown id is a no-op.
	assert.NoError(t, journal.Resolve(ctx, "p-1"))
}
