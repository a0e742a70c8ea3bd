package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mrlokans/readworld/internal/entities"
)

// View exposes the parts of the reading state the filters and sorts look at.
// *entities.UserState satisfies it.
type View interface {
	IsFavorite(bookID string) bool
	HasProgress(bookID string) bool
	LastOpenedAt(bookID string) int64
}

// RatingRange is an inclusive rating band.
type RatingRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r RatingRange) Contains(rating float64) bool {
	return rating >= r.Min && rating <= r.Max
}

// ParseRatingRange parses "min-max", e.g. "4.5-4.7".
func ParseRatingRange(s string) (RatingRange, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return RatingRange{}, fmt.Errorf("rating range %q: want min-max", s)
	}
	r := RatingRange{}
	var err error
	if r.Min, err = strconv.ParseFloat(strings.TrimSpace(lo), 64); err != nil {
		return RatingRange{}, fmt.Errorf("rating range %q: %w", s, err)
	}
	if r.Max, err = strconv.ParseFloat(strings.TrimSpace(hi), 64); err != nil {
		return RatingRange{}, fmt.Errorf("rating range %q: %w", s, err)
	}
	if r.Min > r.Max {
		return RatingRange{}, fmt.Errorf("rating range %q: min exceeds max", s)
	}
	return r, nil
}

// RatingBand is one of the rating ranges offered by the advanced filter.
type RatingBand struct {
	Label string `json:"label"`
	RatingRange
}

// RatingBands are the standard bands, highest first.
var RatingBands = []RatingBand{
	{Label: "4.8 - 5.0", RatingRange: RatingRange{Min: 4.8, Max: 5.0}},
	{Label: "4.5 - 4.7", RatingRange: RatingRange{Min: 4.5, Max: 4.7}},
	{Label: "4.0 - 4.4", RatingRange: RatingRange{Min: 4.0, Max: 4.4}},
	{Label: "3.5 - 3.9", RatingRange: RatingRange{Min: 3.5, Max: 3.9}},
	{Label: "3.0 - 3.4", RatingRange: RatingRange{Min: 3.0, Max: 3.4}},
	{Label: "Below 3.0", RatingRange: RatingRange{Min: 0, Max: 2.9}},
}

// Criteria selects books. Zero values place no restriction.
// Every criterion must hold, except Ratings where matching any one band is enough.
type Criteria struct {
	Genre          string            // exact primary genre
	Query          string            // case-insensitive substring of title or author
	FavoritesOnly  bool
	InProgressOnly bool

	Genres    []string          // primary genre in set
	Formats   []entities.Format // format in set
	Languages []string          // language in set; unset language counts as English
	Ratings   []RatingRange
}

// Filter returns the books matching c, in input order. books is not modified.
// view may be nil when neither FavoritesOnly nor InProgressOnly is set.
func Filter(books []entities.Book, c Criteria, view View) []entities.Book {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(c.Query))

	out := make([]entities.Book, 0, len(books))
	for _, b := range books {
		if c.Genre != "" && b.Genre != c.Genre {
			continue
		}
		if query != "" &&
			!strings.Contains(fold.String(b.Title), query) &&
			!strings.Contains(fold.String(b.Author), query) {
			continue
		}
		if c.FavoritesOnly && (view == nil || !view.IsFavorite(b.ID)) {
			continue
		}
		if c.InProgressOnly && (view == nil || !view.HasProgress(b.ID)) {
			continue
		}
		if len(c.Genres) > 0 && !slices.Contains(c.Genres, b.Genre) {
			continue
		}
		if len(c.Formats) > 0 && !slices.Contains(c.Formats, b.Format) {
			continue
		}
		if len(c.Languages) > 0 && !slices.Contains(c.Languages, b.LanguageOrDefault()) {
			continue
		}
		if len(c.Ratings) > 0 && !slices.ContainsFunc(c.Ratings, func(r RatingRange) bool { return r.Contains(b.Rating) }) {
			continue
		}
		out = append(out, b)
	}
	return out
}

type SortMode string

const (
	SortDefault SortMode = "default" // declaration order
	SortRecent  SortMode = "recent"  // reverse declaration order
	SortRating  SortMode = "rating"  // highest rating first, ties keep order
	SortOpened  SortMode = "opened"  // most recently opened first, never-opened books last
)

// ParseSortMode accepts the mode names; the empty string means SortDefault.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(s); m {
	case "":
		return SortDefault, nil
	case SortDefault, SortRecent, SortRating, SortOpened:
		return m, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

// Sort returns a sorted copy of books. books is not modified.
// view is only consulted by SortOpened and may be nil otherwise.
func Sort(books []entities.Book, mode SortMode, view View) []entities.Book {
	out := slices.Clone(books)
	switch mode {
	case SortRecent:
		slices.Reverse(out)
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case SortOpened:
		if view == nil {
			break
		}
		sort.SliceStable(out, func(i, j int) bool {
			return view.LastOpenedAt(out[i].ID) > view.LastOpenedAt(out[j].ID)
		})
	}
	return out
}
