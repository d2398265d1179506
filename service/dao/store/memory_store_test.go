package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskgate/taskgate/service/dao"
)

type record struct {
	ID   string
	Name string
}

func newStore() *MemoryStore[string, record] {
	return NewMemoryStore[string, record](func(r *record) string { return r.ID })
}

func TestMemoryStoreCRUD(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, nil), dao.ErrNilEntity)

	assert.NoError(t, store.Save(ctx, &record{ID: "1", Name: "first"}))
	assert.NoError(t, store.Save(ctx, &record{ID: "2", Name: "second"}))

	loaded, err := store.Load(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, "first", loaded.Name)

	absent, err := store.Load(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, absent)

	assert.NoError(t, store.Delete(ctx, "1"))
	assert.NoError(t, store.Delete(ctx, "1")) // absent key is a no-op

	listed, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, "2", listed[0].ID)
}

// TestMemoryStoreListOrder verifies listing preserves insertion order and an
// overwrite keeps the original position.
func TestMemoryStoreListOrder(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		assert.NoError(t, store.Save(ctx, &record{ID: id}))
	}
	assert.NoError(t, store.Save(ctx, &record{ID: "a", Name: "updated"}))

	listed, err := store.List(ctx)
	assert.NoError(t, err)
	var ids []string
	for _, r := range listed {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Equal(t, "updated", listed[1].Name)
}
