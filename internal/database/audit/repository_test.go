package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readworld/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return db
}

func TestRepository_LogEvent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	event := &entities.AuditEvent{
		UserID:      "user_1_abcdefghi",
		EventType:   entities.AuditEventAchievement,
		Action:      "achievement_unlock",
		Description: "Unlocked First Save",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		eventType := entities.AuditEventAchievement
		if i%3 == 0 {
			eventType = entities.AuditEventExport
		}
		err := repo.LogEvent(ctx, &entities.AuditEvent{
			UserID:    "user_a",
			EventType: eventType,
			Action:    "test",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		UserID:    "user_b",
		EventType: entities.AuditEventAccount,
		Action:    "login",
		Status:    entities.AuditStatusSuccess,
	}))

	t.Run("pagination", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, "user_a", "", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 10)
		assert.True(t, events[0].CreatedAt.After(events[9].CreatedAt))

		events, _, err = repo.GetEvents(ctx, "user_a", "", 10, 10)
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})

	t.Run("filter by type", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, "user_a", entities.AuditEventExport, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		for _, e := range events {
			assert.Equal(t, entities.AuditEventExport, e.EventType)
		}
	})

	t.Run("all identities", func(t *testing.T) {
		_, total, err := repo.GetEvents(ctx, "", "", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(16), total)
	})
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: "u", Action: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: "u", Action: "new"}))

	deleted, err := repo.DeleteOldEvents(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := repo.GetEvents(ctx, "u", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "new", events[0].Action)
}
