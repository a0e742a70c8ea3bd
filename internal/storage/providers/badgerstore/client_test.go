package badgerstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readworld/internal/storage"
)

func TestClient(t *testing.T) {
	client, err := OpenInMemory()
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := client.Get(ctx, "absent")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "readworld_user_id", "user_1_abc"))

		value, err := client.Get(ctx, "readworld_user_id")
		require.NoError(t, err)
		assert.Equal(t, "user_1_abc", value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "token", "one"))
		require.NoError(t, client.Set(ctx, "token", "two"))

		value, err := client.Get(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, "two", value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "user", "{}"))
		require.NoError(t, client.Delete(ctx, "user"))

		_, err := client.Get(ctx, "user")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, client.Set(cancelled, "k", "v"), context.Canceled)
	})
}
