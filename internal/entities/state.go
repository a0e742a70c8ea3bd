package entities

import (
	"encoding/json"
)

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

type HighlightColor string

const (
	HighlightYellow HighlightColor = "yellow"
	HighlightBlue   HighlightColor = "blue"
	HighlightGreen  HighlightColor = "green"
	HighlightOrange HighlightColor = "orange"
	HighlightPink   HighlightColor = "pink"
)

// HighlightColors lists the colors a highlight may carry, in menu order.
var HighlightColors = []HighlightColor{
	HighlightYellow,
	HighlightBlue,
	HighlightGreen,
	HighlightOrange,
	HighlightPink,
}

// Valid reports whether c is one of the supported highlight colors.
func (c HighlightColor) Valid() bool {
	for _, known := range HighlightColors {
		if c == known {
			return true
		}
	}
	return false
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeSepia Theme = "sepia"
	ThemeWarm  Theme = "warm"
)

// Progress is the saved reading position of one book.
// Paginated formats use Page; location-addressed formats keep Page at 0 and use CFI.
type Progress struct {
	Page int    `json:"page"`
	CFI  string `json:"cfi,omitempty"`
}

// Review is the single review an identity may leave on a book.
type Review struct {
	Text string `json:"text"`
	Name string `json:"name"`
	Date string `json:"date"` // ISO-8601
}

// UnmarshalJSON accepts both the object form and the older bare-string form
// in which only the review text was stored.
func (r *Review) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*r = Review{Text: text}
		return nil
	}

	type plain Review
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Review(p)
	return nil
}

type Bookmark struct {
	Page      int    `json:"page"`
	Note      string `json:"note"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}

type Highlight struct {
	ID        string         `json:"id"`
	Page      int            `json:"page"`
	Text      string         `json:"text"`
	Color     HighlightColor `json:"color"`
	Timestamp int64          `json:"timestamp"`
}

type Note struct {
	ID        string `json:"id"`
	Page      int    `json:"page"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Annotations is the per-book bundle of bookmarks, highlights and notes.
type Annotations struct {
	Bookmarks  []Bookmark  `json:"bookmarks"`
	Highlights []Highlight `json:"highlights"`
	Notes      []Note      `json:"notes"`
}

// NewAnnotations returns an empty bundle with non-nil lists.
func NewAnnotations() *Annotations {
	return &Annotations{
		Bookmarks:  []Bookmark{},
		Highlights: []Highlight{},
		Notes:      []Note{},
	}
}

type Achievement struct {
	Earned bool  `json:"earned"`
	Date   int64 `json:"date"` // epoch ms
}

type Accessibility struct {
	FontSize      int     `json:"fontSize" validate:"min=10,max=32"`
	Theme         Theme   `json:"theme" validate:"oneof=light dark sepia warm"`
	HighContrast  bool    `json:"highContrast"`
	DyslexicFont  bool    `json:"dyslexicFont"`
	ReducedMotion bool    `json:"reducedMotion"`
	ScreenReader  bool    `json:"screenReader"`
	Zoom          float64 `json:"zoom" validate:"min=0.5,max=2"`
	DarkMode      bool    `json:"darkMode"`
	ColorBlind    bool    `json:"colorBlind"`
}

type Preferences struct {
	AutoSave            bool `json:"autoSave"`
	ShowRecommendations bool `json:"showRecommendations"`
	ShowDailyQuote      bool `json:"showDailyQuote"`
	ShowAI              bool `json:"showAI"`
}

// UserState is everything the application remembers about one anonymous identity.
// It is persisted as a single JSON record; field names match the blobs written
// by earlier versions of the web client so those keep loading.
type UserState struct {
	Plan        Plan                `json:"plan"`
	UserName    string              `json:"userName"`
	Progress    map[string]Progress `json:"progress"`
	Favorites   []string            `json:"favorites"`
	Reviews     map[string]Review   `json:"reviews"`
	UserRatings map[string]int      `json:"userRatings"`
	Recent      []string            `json:"recent"`

	SavedThisMonth     int    `json:"savedThisMonth"`
	SavedMonthKey      string `json:"savedMonthKey"` // YYYY-MM
	DownloadsThisMonth int    `json:"downloadsThisMonth"`
	DownloadMonthKey   string `json:"downloadMonthKey"` // YYYY-MM

	Annotations  map[string]*Annotations `json:"annotations"`
	Achievements map[string]Achievement  `json:"achievements"`

	Streak              int    `json:"streak"`
	LastReadDate        *int64 `json:"lastReadDate"` // epoch ms, nil before the first read
	ReadingMinutesToday int    `json:"readingMinutesToday"`
	BooksFinished       int    `json:"booksFinished"`
	ReviewsWritten      int    `json:"reviewsWritten"`

	Accessibility Accessibility `json:"accessibility"`
	Preferences   Preferences   `json:"preferences"`

	// Not written by the original web client; backfilled by the default merge.
	LastOpened    map[string]int64 `json:"lastOpened"`    // bookId -> epoch ms
	FinishedBooks []string         `json:"finishedBooks"` // books already counted in BooksFinished
}

// IsFavorite reports whether bookID is in the favorites set.
func (s *UserState) IsFavorite(bookID string) bool {
	for _, id := range s.Favorites {
		if id == bookID {
			return true
		}
	}
	return false
}

// HasProgress reports whether any progress has been saved for bookID.
func (s *UserState) HasProgress(bookID string) bool {
	_, ok := s.Progress[bookID]
	return ok
}

// LastOpenedAt returns when bookID was last opened (epoch ms), or 0 if never.
func (s *UserState) LastOpenedAt(bookID string) int64 {
	return s.LastOpened[bookID]
}
