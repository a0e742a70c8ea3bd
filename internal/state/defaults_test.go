package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readworld/internal/entities"
)

func TestNormalize(t *testing.T) {
	t.Run("nil collections become empty", func(t *testing.T) {
		var s entities.UserState
		Normalize(&s)

		assert.NotNil(t, s.Progress)
		assert.NotNil(t, s.Favorites)
		assert.NotNil(t, s.Reviews)
		assert.NotNil(t, s.UserRatings)
		assert.NotNil(t, s.Recent)
		assert.NotNil(t, s.Annotations)
		assert.NotNil(t, s.Achievements)
		assert.NotNil(t, s.LastOpened)
		assert.Equal(t, entities.PlanFree, s.Plan)
		assert.Equal(t, DefaultFontSize, s.Accessibility.FontSize)
	})

	t.Run("sets are deduplicated in order", func(t *testing.T) {
		s := Default()
		s.Favorites = []string{"a", "b", "a", "c", "b"}
		s.Recent = []string{"x", "x"}
		Normalize(&s)

		assert.Equal(t, []string{"a", "b", "c"}, s.Favorites)
		assert.Equal(t, []string{"x"}, s.Recent)
	})

	t.Run("settings are clamped", func(t *testing.T) {
		s := Default()
		s.Accessibility.FontSize = 80
		s.Accessibility.Zoom = 0.1
		Normalize(&s)

		assert.Equal(t, MaxFontSize, s.Accessibility.FontSize)
		assert.Equal(t, MinZoom, s.Accessibility.Zoom)
	})

	t.Run("out of range ratings are dropped", func(t *testing.T) {
		s := Default()
		s.UserRatings = map[string]int{"a": 0, "b": 5, "c": 6}
		Normalize(&s)

		assert.Equal(t, map[string]int{"b": 5}, s.UserRatings)
	})

	t.Run("annotations are sorted and get ids", func(t *testing.T) {
		s := Default()
		s.Annotations["lotr-1"] = &entities.Annotations{
			Bookmarks:  []entities.Bookmark{{Page: 9}, {Page: 2, Note: "first"}, {Page: 2, Note: "dup"}},
			Highlights: []entities.Highlight{{Page: 4, Text: "t", Color: "purple"}},
			Notes:      []entities.Note{{Page: 7, Text: "b"}, {Page: 1, Text: "a"}},
		}
		s.Annotations["astro-1"] = nil
		Normalize(&s)

		a := s.Annotations["lotr-1"]
		require.Len(t, a.Bookmarks, 2)
		assert.Equal(t, 2, a.Bookmarks[0].Page)
		assert.Equal(t, "first", a.Bookmarks[0].Note)
		assert.Equal(t, 9, a.Bookmarks[1].Page)

		assert.Regexp(t, `^h-`, a.Highlights[0].ID)
		assert.Equal(t, entities.HighlightYellow, a.Highlights[0].Color)

		assert.Equal(t, []int{1, 7}, []int{a.Notes[0].Page, a.Notes[1].Page})
		assert.Regexp(t, `^n-`, a.Notes[0].ID)

		require.NotNil(t, s.Annotations["astro-1"])
		assert.NotNil(t, s.Annotations["astro-1"].Bookmarks)
	})
}

func TestClone(t *testing.T) {
	s := Default()
	last := int64(1700000000000)
	s.LastReadDate = &last
	s.Progress["a"] = entities.Progress{Page: 1}

	c := Clone(s)
	*c.LastReadDate = 5
	c.Progress["a"] = entities.Progress{Page: 2}

	assert.Equal(t, int64(1700000000000), *s.LastReadDate)
	assert.Equal(t, 1, s.Progress["a"].Page)
}
