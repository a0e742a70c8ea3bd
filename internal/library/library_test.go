package library

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state/statetest"
	"github.com/mrlokans/readworld/internal/validation"
)

var testNow = time.Date(2024, 5, 20, 18, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*Library, *statetest.Fixture) {
	f := statetest.New(t, testNow)
	engine := achievements.NewEngine(f.Store, f.Feed)
	return New(f.Store, catalog.Default(), engine), f
}

func TestLibrary_ToggleFavorite(t *testing.T) {
	ctx := context.Background()
	lib, f := setup(t)

	fav, err := lib.ToggleFavorite(ctx, "lotr-1")
	require.NoError(t, err)
	assert.True(t, fav)

	fav, err = lib.ToggleFavorite(ctx, "astro-1")
	require.NoError(t, err)
	assert.True(t, fav)

	fav, err = lib.ToggleFavorite(ctx, "lotr-1")
	require.NoError(t, err)
	assert.False(t, fav)

	assert.Equal(t, []string{"astro-1"}, f.Reload(t).Snapshot().Favorites)

	_, err = lib.ToggleFavorite(ctx, "missing-1")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestLibrary_AddRecent(t *testing.T) {
	ctx := context.Background()
	lib, f := setup(t)

	for _, id := range []string{"astro-1", "lotr-1", "jungle-1", "astro-1"} {
		require.NoError(t, lib.AddRecent(ctx, id))
	}

	assert.Equal(t, []string{"astro-1", "jungle-1", "lotr-1"}, f.Store.Snapshot().Recent)

	recent := lib.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "astro-1", recent[0].ID)
}

func TestLibrary_SaveReview(t *testing.T) {
	ctx := context.Background()

	t.Run("stores review rating and name", func(t *testing.T) {
		lib, f := setup(t)

		review, err := lib.SaveReview(ctx, "lotr-1", ReviewInput{Name: " Sam ", Text: "Loved it", Rating: 5})
		require.NoError(t, err)
		assert.Equal(t, "Sam", review.Name)
		assert.Equal(t, "2024-05-20T18:30:00.000Z", review.Date)

		snap := f.Reload(t).Snapshot()
		assert.Equal(t, "Sam", snap.UserName)
		assert.Equal(t, review, snap.Reviews["lotr-1"])
		assert.Equal(t, 5, snap.UserRatings["lotr-1"])
		assert.Equal(t, 1, snap.ReviewsWritten)
	})

	t.Run("rating only does not count as written", func(t *testing.T) {
		lib, f := setup(t)

		_, err := lib.SaveReview(ctx, "astro-1", ReviewInput{Name: "Sam", Rating: 3})
		require.NoError(t, err)

		snap := f.Store.Snapshot()
		assert.Equal(t, 3, snap.UserRatings["astro-1"])
		assert.Equal(t, 0, snap.ReviewsWritten)
	})

	t.Run("rejects anonymous and empty input", func(t *testing.T) {
		lib, f := setup(t)

		_, err := lib.SaveReview(ctx, "astro-1", ReviewInput{Name: "Anonymous", Text: "hi"})
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("name"))

		_, err = lib.SaveReview(ctx, "astro-1", ReviewInput{Name: "  ", Text: "hi"})
		assert.ErrorIs(t, err, validation.ErrInvalid)

		_, err = lib.SaveReview(ctx, "astro-1", ReviewInput{Name: "Sam", Text: "   "})
		assert.ErrorIs(t, err, ErrEmptyReview)

		_, err = lib.SaveReview(ctx, "astro-1", ReviewInput{Name: "Sam", Rating: 6})
		assert.ErrorIs(t, err, validation.ErrInvalid)

		assert.Empty(t, f.Store.Snapshot().Reviews)
	})

	t.Run("tenth written review unlocks critic", func(t *testing.T) {
		lib, f := setup(t)
		require.NoError(t, f.Store.Mutate(ctx, func(st *entities.UserState) error {
			for i := 0; i < 9; i++ {
				st.Reviews[fmt.Sprintf("old-%d", i)] = entities.Review{Text: "ok", Name: "Sam"}
			}
			return nil
		}))

		_, err := lib.SaveReview(ctx, "classic-1", ReviewInput{Name: "Sam", Text: "Long but good"})
		require.NoError(t, err)

		snap := f.Store.Snapshot()
		assert.Equal(t, 10, snap.ReviewsWritten)
		assert.True(t, snap.Achievements[achievements.Reviews10].Earned)
	})
}

func TestLibrary_DeleteReview(t *testing.T) {
	ctx := context.Background()
	lib, f := setup(t)

	_, err := lib.SaveReview(ctx, "lotr-1", ReviewInput{Name: "Sam", Text: "Loved it", Rating: 4})
	require.NoError(t, err)
	require.NoError(t, lib.DeleteReview(ctx, "lotr-1"))

	snap := f.Store.Snapshot()
	assert.NotContains(t, snap.Reviews, "lotr-1")
	assert.NotContains(t, snap.UserRatings, "lotr-1")
	assert.Equal(t, 0, snap.ReviewsWritten)
}

func TestLibrary_SetRating(t *testing.T) {
	ctx := context.Background()
	lib, f := setup(t)

	require.NoError(t, lib.SetRating(ctx, "jungle-1", 4))
	assert.Equal(t, 4, f.Store.Snapshot().UserRatings["jungle-1"])

	require.NoError(t, lib.SetRating(ctx, "jungle-1", 0))
	assert.NotContains(t, f.Store.Snapshot().UserRatings, "jungle-1")

	assert.ErrorIs(t, lib.SetRating(ctx, "jungle-1", 9), ErrInvalidRating)
}

func TestLibrary_RecordDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("primary and alternate formats", func(t *testing.T) {
		lib, f := setup(t)

		d, err := lib.RecordDownload(ctx, "astro-1", "")
		require.NoError(t, err)
		assert.Equal(t, entities.DownloadFormat{Format: entities.FormatPDF, URL: "books/astro.pdf"}, d)

		d, err = lib.RecordDownload(ctx, "astro-1", entities.FormatEPUB)
		require.NoError(t, err)
		assert.Equal(t, "books/astro.epub", d.URL)

		assert.Equal(t, 2, f.Store.Snapshot().DownloadsThisMonth)
		assert.Equal(t, 2, lib.Stats().DownloadsThisMonth)
	})

	t.Run("unknown format is not counted", func(t *testing.T) {
		lib, f := setup(t)
		_, err := lib.RecordDownload(ctx, "astro-1", "mobi")
		assert.ErrorIs(t, err, ErrFormatUnavailable)
		assert.Equal(t, 0, f.Store.Snapshot().DownloadsThisMonth)
	})

	t.Run("counter rolls over with the month", func(t *testing.T) {
		lib, f := setup(t)
		_, err := lib.RecordDownload(ctx, "lotr-1", "")
		require.NoError(t, err)

		f.Clock.Advance(15 * 24 * time.Hour)
		_, err = lib.RecordDownload(ctx, "lotr-1", "")
		require.NoError(t, err)

		snap := f.Store.Snapshot()
		assert.Equal(t, 1, snap.DownloadsThisMonth)
		assert.Equal(t, "2024-06", snap.DownloadMonthKey)
	})
}

func TestLibrary_ClearData(t *testing.T) {
	ctx := context.Background()
	lib, f := setup(t)

	require.NoError(t, f.Store.Mutate(ctx, func(st *entities.UserState) error {
		st.Progress["lotr-1"] = entities.Progress{Page: 10}
		st.SavedThisMonth = 3
		st.Annotations["lotr-1"] = &entities.Annotations{Bookmarks: []entities.Bookmark{{Page: 10}}}
		return nil
	}))
	_, err := lib.ToggleFavorite(ctx, "lotr-1")
	require.NoError(t, err)
	_, err = lib.SaveReview(ctx, "lotr-1", ReviewInput{Name: "Sam", Text: "ok", Rating: 3})
	require.NoError(t, err)

	require.NoError(t, lib.ClearData(ctx))

	snap := f.Reload(t).Snapshot()
	assert.Empty(t, snap.Progress)
	assert.Empty(t, snap.Favorites)
	assert.Empty(t, snap.Reviews)
	assert.Equal(t, 0, snap.SavedThisMonth)
	assert.Len(t, snap.Annotations["lotr-1"].Bookmarks, 1)
	assert.Equal(t, Stats{ReviewsWritten: 1}, lib.Stats())
}
