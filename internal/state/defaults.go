package state

import (
	"maps"
	"slices"
	"sort"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/id"
)

const (
	DefaultFontSize = 16
	MinFontSize     = 10
	MaxFontSize     = 32

	DefaultZoom = 1.0
	MinZoom     = 0.5
	MaxZoom     = 2.0
)

// Default returns the state of an identity that has never saved anything.
func Default() entities.UserState {
	return entities.UserState{
		Plan:         entities.PlanFree,
		Progress:     map[string]entities.Progress{},
		Favorites:    []string{},
		Reviews:      map[string]entities.Review{},
		UserRatings:  map[string]int{},
		Recent:       []string{},
		Annotations:  map[string]*entities.Annotations{},
		Achievements: map[string]entities.Achievement{},
		Accessibility: entities.Accessibility{
			FontSize: DefaultFontSize,
			Theme:    entities.ThemeLight,
			Zoom:     DefaultZoom,
		},
		Preferences: entities.Preferences{
			AutoSave:            true,
			ShowRecommendations: true,
			ShowDailyQuote:      true,
			ShowAI:              true,
		},
		LastOpened:    map[string]int64{},
		FinishedBooks: []string{},
	}
}

// Normalize repairs a state decoded from storage so every invariant holds:
// collections are non-nil, sets carry no duplicates, numeric settings are in range,
// annotations are sorted and carry ids.
func Normalize(s *entities.UserState) {
	if s.Plan != entities.PlanPremium {
		s.Plan = entities.PlanFree
	}

	if s.Progress == nil {
		s.Progress = map[string]entities.Progress{}
	}
	if s.Reviews == nil {
		s.Reviews = map[string]entities.Review{}
	}
	if s.UserRatings == nil {
		s.UserRatings = map[string]int{}
	}
	for bookID, rating := range s.UserRatings {
		if rating < 1 || rating > 5 {
			delete(s.UserRatings, bookID)
		}
	}
	if s.Achievements == nil {
		s.Achievements = map[string]entities.Achievement{}
	}
	if s.LastOpened == nil {
		s.LastOpened = map[string]int64{}
	}

	s.Favorites = dedupe(s.Favorites)
	s.Recent = dedupe(s.Recent)
	s.FinishedBooks = dedupe(s.FinishedBooks)

	s.SavedThisMonth = max(s.SavedThisMonth, 0)
	s.DownloadsThisMonth = max(s.DownloadsThisMonth, 0)
	s.Streak = max(s.Streak, 0)
	s.ReadingMinutesToday = max(s.ReadingMinutesToday, 0)
	s.BooksFinished = max(s.BooksFinished, 0)
	s.ReviewsWritten = max(s.ReviewsWritten, 0)

	normalizeAccessibility(&s.Accessibility)

	if s.Annotations == nil {
		s.Annotations = map[string]*entities.Annotations{}
	}
	for bookID, a := range s.Annotations {
		if a == nil {
			s.Annotations[bookID] = entities.NewAnnotations()
			continue
		}
		NormalizeAnnotations(a)
	}
}

func normalizeAccessibility(a *entities.Accessibility) {
	if a.FontSize == 0 {
		a.FontSize = DefaultFontSize
	}
	a.FontSize = ClampFontSize(a.FontSize)

	switch a.Theme {
	case entities.ThemeLight, entities.ThemeDark, entities.ThemeSepia, entities.ThemeWarm:
	default:
		a.Theme = entities.ThemeLight
	}

	if a.Zoom == 0 {
		a.Zoom = DefaultZoom
	}
	a.Zoom = ClampZoom(a.Zoom)
}

// NormalizeAnnotations sorts bookmarks and notes by page, keeps one bookmark per page
// and assigns ids to highlights and notes stored without one.
func NormalizeAnnotations(a *entities.Annotations) {
	if a.Bookmarks == nil {
		a.Bookmarks = []entities.Bookmark{}
	}
	if a.Highlights == nil {
		a.Highlights = []entities.Highlight{}
	}
	if a.Notes == nil {
		a.Notes = []entities.Note{}
	}

	sort.SliceStable(a.Bookmarks, func(i, j int) bool { return a.Bookmarks[i].Page < a.Bookmarks[j].Page })
	a.Bookmarks = slices.CompactFunc(a.Bookmarks, func(x, y entities.Bookmark) bool { return x.Page == y.Page })

	for i := range a.Highlights {
		if a.Highlights[i].ID == "" {
			a.Highlights[i].ID = id.MustGenerate(HighlightIDPrefix)
		}
		if !a.Highlights[i].Color.Valid() {
			a.Highlights[i].Color = entities.HighlightYellow
		}
	}

	for i := range a.Notes {
		if a.Notes[i].ID == "" {
			a.Notes[i].ID = id.MustGenerate(NoteIDPrefix)
		}
	}
	sort.SliceStable(a.Notes, func(i, j int) bool { return a.Notes[i].Page < a.Notes[j].Page })
}

const (
	HighlightIDPrefix = "h"
	NoteIDPrefix      = "n"
)

// ClampFontSize bounds a font size to [MinFontSize, MaxFontSize].
func ClampFontSize(size int) int {
	return min(max(size, MinFontSize), MaxFontSize)
}

// ClampZoom bounds a zoom factor to [MinZoom, MaxZoom].
func ClampZoom(zoom float64) float64 {
	return min(max(zoom, MinZoom), MaxZoom)
}

// Clone returns a deep copy of s.
func Clone(s entities.UserState) entities.UserState {
	out := s
	out.Progress = maps.Clone(s.Progress)
	out.Favorites = slices.Clone(s.Favorites)
	out.Reviews = maps.Clone(s.Reviews)
	out.UserRatings = maps.Clone(s.UserRatings)
	out.Recent = slices.Clone(s.Recent)
	out.Achievements = maps.Clone(s.Achievements)
	out.LastOpened = maps.Clone(s.LastOpened)
	out.FinishedBooks = slices.Clone(s.FinishedBooks)

	if s.LastReadDate != nil {
		v := *s.LastReadDate
		out.LastReadDate = &v
	}

	if s.Annotations != nil {
		out.Annotations = make(map[string]*entities.Annotations, len(s.Annotations))
		for bookID, a := range s.Annotations {
			if a == nil {
				out.Annotations[bookID] = nil
				continue
			}
			out.Annotations[bookID] = &entities.Annotations{
				Bookmarks:  slices.Clone(a.Bookmarks),
				Highlights: slices.Clone(a.Highlights),
				Notes:      slices.Clone(a.Notes),
			}
		}
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, v := range ids {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
