package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/readworld/internal/entities"
)

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-02", MonthKey(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)))

	// Month keys follow UTC, not the caller's zone.
	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "2024-02", MonthKey(time.Date(2024, 3, 1, 5, 0, 0, 0, tokyo)))
}

func TestRollover(t *testing.T) {
	t.Run("new month resets saved counter", func(t *testing.T) {
		s := Default()
		s.SavedMonthKey = "2024-01"
		s.SavedThisMonth = 5
		s.DownloadMonthKey = "2024-02"
		s.DownloadsThisMonth = 3

		assert.True(t, Rollover(&s, "2024-02"))
		assert.Equal(t, 0, s.SavedThisMonth)
		assert.Equal(t, "2024-02", s.SavedMonthKey)
		assert.Equal(t, 3, s.DownloadsThisMonth)
	})

	t.Run("idempotent", func(t *testing.T) {
		s := Default()
		s.SavedMonthKey = "2023-12"
		s.SavedThisMonth = 2
		s.DownloadMonthKey = "2023-11"
		s.DownloadsThisMonth = 7

		Rollover(&s, "2024-01")
		once := Clone(s)
		assert.False(t, Rollover(&s, "2024-01"))
		assert.Equal(t, once, s)
	})

	t.Run("same month keeps counts", func(t *testing.T) {
		s := entities.UserState{SavedMonthKey: "2024-05", SavedThisMonth: 9, DownloadMonthKey: "2024-05", DownloadsThisMonth: 1}
		assert.False(t, Rollover(&s, "2024-05"))
		assert.Equal(t, 9, s.SavedThisMonth)
	})
}
