// Package library implements the per-book actions outside the reader:
// favorites, the recent list, reviews, ratings and downloads.
package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/validation"
)

var (
	ErrBookNotFound      = errors.New("library: book not found")
	ErrEmptyReview       = errors.New("library: a review needs text or a rating")
	ErrFormatUnavailable = errors.New("library: format not available for download")
	ErrInvalidRating     = errors.New("library: rating must be between 1 and 5")
)

// isoMillis matches the timestamps the web client stored with reviews.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type Library struct {
	store        *state.Store
	catalog      *catalog.Catalog
	achievements *achievements.Engine
	validator    *validation.Validator
}

func New(store *state.Store, cat *catalog.Catalog, engine *achievements.Engine) *Library {
	return &Library{
		store:        store,
		catalog:      cat,
		achievements: engine,
		validator:    validation.New(),
	}
}

func (l *Library) book(bookID string) (entities.Book, error) {
	b, ok := l.catalog.Find(bookID)
	if !ok {
		return entities.Book{}, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	return b, nil
}

// ToggleFavorite adds or removes bookID from the favorites and reports whether it is now a favorite.
func (l *Library) ToggleFavorite(ctx context.Context, bookID string) (bool, error) {
	if _, err := l.book(bookID); err != nil {
		return false, err
	}

	var favorite bool
	err := l.store.Mutate(ctx, func(st *entities.UserState) error {
		if st.IsFavorite(bookID) {
			st.Favorites = slices.DeleteFunc(st.Favorites, func(id string) bool { return id == bookID })
			favorite = false
			return nil
		}
		st.Favorites = append(st.Favorites, bookID)
		favorite = true
		return nil
	})
	return favorite, err
}

// AddRecent moves bookID to the front of the recent list.
func (l *Library) AddRecent(ctx context.Context, bookID string) error {
	return l.store.Mutate(ctx, func(st *entities.UserState) error {
		PushRecent(st, bookID)
		return nil
	})
}

// PushRecent puts bookID first in st.Recent, removing any earlier occurrence.
func PushRecent(st *entities.UserState, bookID string) {
	rest := slices.DeleteFunc(slices.Clone(st.Recent), func(id string) bool { return id == bookID })
	st.Recent = append([]string{bookID}, rest...)
}

// ReviewInput is a review as submitted by the user.
type ReviewInput struct {
	Name   string `json:"name" validate:"required,max=80,ne=Anonymous"`
	Text   string `json:"text" validate:"max=5000"`
	Rating int    `json:"rating" validate:"min=0,max=5"`
}

// SaveReview stores the identity's review of bookID, replacing any earlier one.
// A name other than "Anonymous" is required, as is text or a rating. The name is
// remembered for the next review. A rating of 0 leaves the stored rating unchanged.
func (l *Library) SaveReview(ctx context.Context, bookID string, in ReviewInput) (entities.Review, error) {
	if _, err := l.book(bookID); err != nil {
		return entities.Review{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Text = strings.TrimSpace(in.Text)
	if err := l.validator.Validate(in); err != nil {
		return entities.Review{}, err
	}
	if in.Text == "" && in.Rating == 0 {
		return entities.Review{}, ErrEmptyReview
	}

	review := entities.Review{
		Text: in.Text,
		Name: in.Name,
		Date: l.store.Now().UTC().Format(isoMillis),
	}
	err := l.store.Mutate(ctx, func(st *entities.UserState) error {
		st.UserName = in.Name
		st.Reviews[bookID] = review
		if in.Rating > 0 {
			st.UserRatings[bookID] = in.Rating
		}
		st.ReviewsWritten = countWrittenReviews(st)
		return nil
	})
	if err != nil {
		return entities.Review{}, err
	}

	if _, err := l.achievements.Check(ctx, achievements.Reviews10); err != nil {
		return review, err
	}
	return review, nil
}

// DeleteReview removes both the review and the rating of bookID.
func (l *Library) DeleteReview(ctx context.Context, bookID string) error {
	return l.store.Mutate(ctx, func(st *entities.UserState) error {
		delete(st.Reviews, bookID)
		delete(st.UserRatings, bookID)
		st.ReviewsWritten = countWrittenReviews(st)
		return nil
	})
}

// SetRating stores a 1-5 rating without touching the review text. 0 clears the rating.
func (l *Library) SetRating(ctx context.Context, bookID string, rating int) error {
	if _, err := l.book(bookID); err != nil {
		return err
	}
	if rating < 0 || rating > 5 {
		return ErrInvalidRating
	}
	return l.store.Mutate(ctx, func(st *entities.UserState) error {
		if rating == 0 {
			delete(st.UserRatings, bookID)
			return nil
		}
		st.UserRatings[bookID] = rating
		return nil
	})
}

func countWrittenReviews(st *entities.UserState) int {
	n := 0
	for _, r := range st.Reviews {
		if r.Text != "" {
			n++
		}
	}
	return n
}

// RecordDownload counts a download of bookID and returns the file to fetch.
// An empty format selects the book's primary file.
func (l *Library) RecordDownload(ctx context.Context, bookID string, format entities.Format) (entities.DownloadFormat, error) {
	b, err := l.book(bookID)
	if err != nil {
		return entities.DownloadFormat{}, err
	}

	target, ok := downloadFor(b, format)
	if !ok {
		return entities.DownloadFormat{}, fmt.Errorf("%w: %s as %s", ErrFormatUnavailable, bookID, format)
	}

	monthKey := state.MonthKey(l.store.Now())
	err = l.store.Mutate(ctx, func(st *entities.UserState) error {
		state.Rollover(st, monthKey)
		st.DownloadsThisMonth++
		return nil
	})
	return target, err
}

func downloadFor(b entities.Book, format entities.Format) (entities.DownloadFormat, bool) {
	if format == "" || (format == b.Format && b.FileURL != "") {
		if b.FileURL == "" {
			return entities.DownloadFormat{}, false
		}
		return entities.DownloadFormat{Format: b.Format, URL: b.FileURL}, true
	}
	for _, d := range b.DownloadFormats {
		if d.Format == format && d.URL != "" {
			return d, true
		}
	}
	return entities.DownloadFormat{}, false
}

// Stats are the counters shown in the account panel.
type Stats struct {
	SavedThisMonth     int `json:"savedThisMonth"`
	DownloadsThisMonth int `json:"downloadsThisMonth"`
	Favorites          int `json:"favorites"`
	BooksFinished      int `json:"booksFinished"`
	ReviewsWritten     int `json:"reviewsWritten"`
	Streak             int `json:"streak"`
}

func (l *Library) Stats() Stats {
	var s Stats
	l.store.View(func(st *entities.UserState) {
		s = Stats{
			SavedThisMonth:     st.SavedThisMonth,
			DownloadsThisMonth: st.DownloadsThisMonth,
			Favorites:          len(st.Favorites),
			BooksFinished:      st.BooksFinished,
			ReviewsWritten:     st.ReviewsWritten,
			Streak:             st.Streak,
		}
	})
	return s
}

// Favorites returns the favorite books in the order they were added. Ids missing from the catalog are skipped.
func (l *Library) Favorites() []entities.Book {
	var ids []string
	l.store.View(func(st *entities.UserState) { ids = slices.Clone(st.Favorites) })
	return l.resolve(ids)
}

// Recent returns recently opened books, most recent first.
func (l *Library) Recent() []entities.Book {
	var ids []string
	l.store.View(func(st *entities.UserState) { ids = slices.Clone(st.Recent) })
	return l.resolve(ids)
}

func (l *Library) resolve(ids []string) []entities.Book {
	out := make([]entities.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := l.catalog.Find(id); ok {
			out = append(out, b)
		}
	}
	return out
}

// ClearData forgets progress, favorites, recent books, reviews and the monthly counters.
// Annotations, achievements and settings are kept.
func (l *Library) ClearData(ctx context.Context) error {
	return l.store.Mutate(ctx, func(st *entities.UserState) error {
		st.Progress = map[string]entities.Progress{}
		st.Favorites = []string{}
		st.Recent = []string{}
		st.Reviews = map[string]entities.Review{}
		st.SavedThisMonth = 0
		st.DownloadsThisMonth = 0
		return nil
	})
}
