package entrypoint

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/config"
	"github.com/mrlokans/readworld/internal/database"
	"github.com/mrlokans/readworld/internal/database/records"
	"github.com/mrlokans/readworld/internal/entities"
)

func seedRecords(t *testing.T, dbPath string, values map[string]string) {
	t.Helper()
	db, err := database.NewQuietDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	repo := records.NewRepository(db.DB)
	for key, value := range values {
		require.NoError(t, repo.Set(context.Background(), key, value))
	}
}

func testConfig(t *testing.T, dbPath string) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Database.Path = dbPath
	cfg.Storage.Backend = config.StorageSQLite
	cfg.Library.BooksDir = t.TempDir()
	cfg.Catalog.Path = ""
	cfg.Account.APIURL = ""
	cfg.Account.TokenKey = ""
	cfg.Global.Timezone = "UTC"
	return cfg
}

func TestBuild_UnlocksAchievementsFromRestoredState(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "readworld.db")
	const userID = "user_1700000000000_abcdefghi"
	seedRecords(t, dbPath, map[string]string{
		entities.RecordKeyUserID:               userID,
		entities.RecordKeyStatePrefix + userID: `{"streak":9,"plan":"premium"}`,
	})

	app, err := Build(testConfig(t, dbPath), false)
	require.NoError(t, err)
	defer app.Close()

	st := app.Store.Snapshot()
	assert.Equal(t, 9, st.Streak)
	assert.True(t, st.Achievements[achievements.Streak7].Earned)
	assert.NotZero(t, st.Achievements[achievements.Streak7].Date)
	assert.True(t, st.Achievements[achievements.Premium].Earned)

	// The unlock is persisted, not only held in memory.
	stored, err := app.Records.Get(context.Background(), entities.RecordKeyStatePrefix+userID)
	require.NoError(t, err)
	assert.Contains(t, stored, `"streak7":{"earned":true`)
}

func TestBuild_FreshStateEarnsNothing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "readworld.db")

	app, err := Build(testConfig(t, dbPath), false)
	require.NoError(t, err)
	defer app.Close()

	for _, status := range app.Achievements.List() {
		assert.False(t, status.Earned, status.ID)
	}
}
