package secret

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskgate/taskgate/service/dao"
)

func TestVaultRoundTrip(t *testing.T) {
	vault, err := New(t.TempDir(), DefaultKey)
	assert.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, vault.Put(ctx, "api-token", "s3cr3t"))
	value, err := vault.Get(ctx, "api-token")
	assert.NoError(t, err)
	assert.Equal(t, "s3cr3t", value)

	// Overwrite replaces the previous value.
	assert.NoError(t, vault.Put(ctx, "api-token", "rotated"))
	value, err = vault.Get(ctx, "api-token")
	assert.NoError(t, err)
	assert.Equal(t, "rotated", value)

	assert.NoError(t, vault.Delete(ctx, "api-token"))
	_, err = vault.Get(ctx, "api-token")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	// Deleting an absent secret is a no-op.
	assert.NoError(t, vault.Delete(ctx, "api-token"))
}

func TestVaultValidation(t *testing.T) {
	_, err := New("", DefaultKey)
	assert.Error(t, err)

	vault, err := New(t.TempDir(), "")
	assert.NoError(t, err)
	ctx := context.Background()
	assert.ErrorIs(t, vault.Put(ctx, "", "x"), dao.ErrInvalidID)
	_, err = vault.Get(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
}
