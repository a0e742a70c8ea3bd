package records

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/storage"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_records_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Record{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_Set_New(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "readworld_user_id", "user_1_abcdefghi"))

	record, err := repo.GetRecord(ctx, "readworld_user_id")
	require.NoError(t, err)
	assert.Equal(t, "readworld_user_id", record.Key)
	assert.Equal(t, "user_1_abcdefghi", record.Value)
}

func TestRepository_Set_Update(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "token", "first"))
	require.NoError(t, repo.Set(ctx, "token", "second"))

	value, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Get(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "user", `{"plan":"premium"}`))
	require.NoError(t, repo.Delete(ctx, "user"))

	_, err := repo.Get(ctx, "user")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, repo.Delete(ctx, "user"))
}

func TestRepository_Keys(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "readworld_state_user_b", "{}"))
	require.NoError(t, repo.Set(ctx, "readworld_state_user_a", "{}"))
	require.NoError(t, repo.Set(ctx, "token", "t"))

	keys, err := repo.Keys(ctx, entities.RecordKeyStatePrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"readworld_state_user_a", "readworld_state_user_b"}, keys)
}
