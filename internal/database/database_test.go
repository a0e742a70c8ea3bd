package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readworld/internal/database/records"
	"github.com/mrlokans/readworld/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "readworld.db")

	db, err := NewQuietDatabase(dbPath)
	require.NoError(t, err)

	assert.True(t, db.DB.Migrator().HasTable(&entities.Record{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.AuditEvent{}))

	repo := records.NewRepository(db.DB)
	require.NoError(t, repo.Set(context.Background(), entities.RecordKeyUserID, "user_1_abcdefghi"))
	require.NoError(t, db.Close())

	t.Run("values survive reopening", func(t *testing.T) {
		reopened, err := NewQuietDatabase(dbPath)
		require.NoError(t, err)
		defer reopened.Close()

		value, err := records.NewRepository(reopened.DB).Get(context.Background(), entities.RecordKeyUserID)
		require.NoError(t, err)
		assert.Equal(t, "user_1_abcdefghi", value)
	})
}
