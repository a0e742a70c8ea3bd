// Package annotations manages the per-book bookmarks, highlights and notes kept in
// the reading state. Every change is persisted before the call returns.
package annotations

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/id"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/validation"
)

var (
	ErrInvalidColor = errors.New("annotations: unsupported highlight color")
	ErrEmptyNote    = errors.New("annotations: note text is empty")
	ErrInvalidPage  = errors.New("annotations: page must be at least 1")
	ErrNotFound     = errors.New("annotations: annotation not found")
)

type Manager struct {
	store     *state.Store
	validator *validation.Validator
}

func NewManager(store *state.Store) *Manager {
	return &Manager{store: store, validator: validation.New()}
}

type highlightInput struct {
	Page  int                     `json:"page" validate:"min=1"`
	Text  string                  `json:"text" validate:"required"`
	Color entities.HighlightColor `json:"color" validate:"oneof=yellow blue green orange pink"`
}

// Get returns a copy of the book's annotations, creating and persisting an empty
// bundle the first time a book is asked for.
func (m *Manager) Get(ctx context.Context, bookID string) (entities.Annotations, error) {
	var out entities.Annotations
	found := false
	m.store.View(func(st *entities.UserState) {
		if a, ok := st.Annotations[bookID]; ok && a != nil {
			out = copyOf(a)
			found = true
		}
	})
	if found {
		return out, nil
	}

	err := m.store.Mutate(ctx, func(st *entities.UserState) error {
		out = copyOf(bundle(st, bookID))
		return nil
	})
	return out, err
}

// ToggleBookmark removes the bookmark on page if there is one, otherwise adds one.
// Reports whether the page is bookmarked afterwards.
func (m *Manager) ToggleBookmark(ctx context.Context, bookID string, page int) (bool, error) {
	if page < 1 {
		return false, ErrInvalidPage
	}

	now := m.store.Now().UnixMilli()
	var bookmarked bool
	err := m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		if i := bookmarkIndex(a, page); i >= 0 {
			a.Bookmarks = slices.Delete(a.Bookmarks, i, i+1)
			bookmarked = false
			return nil
		}
		insertBookmark(a, entities.Bookmark{Page: page, Timestamp: now})
		bookmarked = true
		return nil
	})
	return bookmarked, err
}

// AddBookmark adds a bookmark on page. If the page is already bookmarked, a non-empty
// note replaces the existing note and an empty one leaves it unchanged.
func (m *Manager) AddBookmark(ctx context.Context, bookID string, page int, note string) error {
	if page < 1 {
		return ErrInvalidPage
	}

	now := m.store.Now().UnixMilli()
	return m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		if i := bookmarkIndex(a, page); i >= 0 {
			if note != "" {
				a.Bookmarks[i].Note = note
			}
			return nil
		}
		insertBookmark(a, entities.Bookmark{Page: page, Note: note, Timestamp: now})
		return nil
	})
}

// SetBookmarkNote sets the note of the bookmark on page, creating the bookmark if needed.
func (m *Manager) SetBookmarkNote(ctx context.Context, bookID string, page int, note string) error {
	if page < 1 {
		return ErrInvalidPage
	}

	now := m.store.Now().UnixMilli()
	return m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		if i := bookmarkIndex(a, page); i >= 0 {
			a.Bookmarks[i].Note = note
			return nil
		}
		insertBookmark(a, entities.Bookmark{Page: page, Note: note, Timestamp: now})
		return nil
	})
}

// RemoveBookmark deletes the bookmark on page. Removing a missing bookmark is not an error.
func (m *Manager) RemoveBookmark(ctx context.Context, bookID string, page int) error {
	return m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		a.Bookmarks = slices.DeleteFunc(a.Bookmarks, func(b entities.Bookmark) bool { return b.Page == page })
		return nil
	})
}

// AddHighlight appends a highlight and returns it with its assigned id.
func (m *Manager) AddHighlight(ctx context.Context, bookID string, page int, text string, color entities.HighlightColor) (entities.Highlight, error) {
	if err := m.validator.Validate(highlightInput{Page: page, Text: text, Color: color}); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) && verr.Has("color") {
			return entities.Highlight{}, fmt.Errorf("%w: %q", ErrInvalidColor, color)
		}
		if errors.As(err, &verr) && verr.Has("page") {
			return entities.Highlight{}, ErrInvalidPage
		}
		return entities.Highlight{}, err
	}

	highlightID, err := id.Generate(state.HighlightIDPrefix)
	if err != nil {
		return entities.Highlight{}, err
	}

	h := entities.Highlight{
		ID:        highlightID,
		Page:      page,
		Text:      text,
		Color:     color,
		Timestamp: m.store.Now().UnixMilli(),
	}
	err = m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		a.Highlights = append(a.Highlights, h)
		return nil
	})
	return h, err
}

// RemoveHighlight deletes the highlight with the given id.
func (m *Manager) RemoveHighlight(ctx context.Context, bookID, highlightID string) error {
	return m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		i := slices.IndexFunc(a.Highlights, func(h entities.Highlight) bool { return h.ID == highlightID })
		if i < 0 {
			return ErrNotFound
		}
		a.Highlights = slices.Delete(a.Highlights, i, i+1)
		return nil
	})
}

// RemoveHighlightAt deletes the highlight at a list position.
func (m *Manager) RemoveHighlightAt(ctx context.Context, bookID string, index int) error {
	return m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		if index < 0 || index >= len(a.Highlights) {
			return ErrNotFound
		}
		a.Highlights = slices.Delete(a.Highlights, index, index+1)
		return nil
	})
}

// AddNote appends a note. Several notes may share a page.
func (m *Manager) AddNote(ctx context.Context, bookID string, page int, text string) (entities.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entities.Note{}, ErrEmptyNote
	}
	if page < 1 {
		return entities.Note{}, ErrInvalidPage
	}

	noteID, err := id.Generate(state.NoteIDPrefix)
	if err != nil {
		return entities.Note{}, err
	}

	n := entities.Note{ID: noteID, Page: page, Text: text, Timestamp: m.store.Now().UnixMilli()}
	err = m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		a.Notes = append(a.Notes, n)
		sortNotes(a)
		return nil
	})
	return n, err
}

// SaveQuickNote replaces the text of the first note on page, or adds a note if the page has none.
func (m *Manager) SaveQuickNote(ctx context.Context, bookID string, page int, text string) (entities.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entities.Note{}, ErrEmptyNote
	}
	if page < 1 {
		return entities.Note{}, ErrInvalidPage
	}

	noteID, err := id.Generate(state.NoteIDPrefix)
	if err != nil {
		return entities.Note{}, err
	}

	now := m.store.Now().UnixMilli()
	var saved entities.Note
	err = m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		if i := slices.IndexFunc(a.Notes, func(n entities.Note) bool { return n.Page == page }); i >= 0 {
			a.Notes[i].Text = text
			a.Notes[i].Timestamp = now
			saved = a.Notes[i]
			return nil
		}
		saved = entities.Note{ID: noteID, Page: page, Text: text, Timestamp: now}
		a.Notes = append(a.Notes, saved)
		sortNotes(a)
		return nil
	})
	return saved, err
}

// UpdateNote replaces the text of the note with the given id.
func (m *Manager) UpdateNote(ctx context.Context, bookID, noteID, text string) (entities.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entities.Note{}, ErrEmptyNote
	}

	now := m.store.Now().UnixMilli()
	var updated entities.Note
	err := m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		i := slices.IndexFunc(a.Notes, func(n entities.Note) bool { return n.ID == noteID })
		if i < 0 {
			return ErrNotFound
		}
		a.Notes[i].Text = text
		a.Notes[i].Timestamp = now
		updated = a.Notes[i]
		return nil
	})
	return updated, err
}

// RemoveNote deletes the note with the given id.
func (m *Manager) RemoveNote(ctx context.Context, bookID, noteID string) error {
	return m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		i := slices.IndexFunc(a.Notes, func(n entities.Note) bool { return n.ID == noteID })
		if i < 0 {
			return ErrNotFound
		}
		a.Notes = slices.Delete(a.Notes, i, i+1)
		return nil
	})
}

// RemoveNoteAt deletes the note at a list position.
func (m *Manager) RemoveNoteAt(ctx context.Context, bookID string, index int) error {
	return m.store.Mutate(ctx, func(st *entities.UserState) error {
		a := bundle(st, bookID)
		if index < 0 || index >= len(a.Notes) {
			return ErrNotFound
		}
		a.Notes = slices.Delete(a.Notes, index, index+1)
		return nil
	})
}

// IsBookmarked reports whether page of bookID carries a bookmark.
func (m *Manager) IsBookmarked(bookID string, page int) bool {
	var ok bool
	m.store.View(func(st *entities.UserState) {
		if a := st.Annotations[bookID]; a != nil {
			ok = bookmarkIndex(a, page) >= 0
		}
	})
	return ok
}

// NoteForPage returns the first note on page, if any.
func (m *Manager) NoteForPage(bookID string, page int) (entities.Note, bool) {
	var (
		note entities.Note
		ok   bool
	)
	m.store.View(func(st *entities.UserState) {
		a := st.Annotations[bookID]
		if a == nil {
			return
		}
		if i := slices.IndexFunc(a.Notes, func(n entities.Note) bool { return n.Page == page }); i >= 0 {
			note, ok = a.Notes[i], true
		}
	})
	return note, ok
}

func bundle(st *entities.UserState, bookID string) *entities.Annotations {
	a := st.Annotations[bookID]
	if a == nil {
		a = entities.NewAnnotations()
		st.Annotations[bookID] = a
	}
	return a
}

func bookmarkIndex(a *entities.Annotations, page int) int {
	return slices.IndexFunc(a.Bookmarks, func(b entities.Bookmark) bool { return b.Page == page })
}

func insertBookmark(a *entities.Annotations, b entities.Bookmark) {
	a.Bookmarks = append(a.Bookmarks, b)
	sort.SliceStable(a.Bookmarks, func(i, j int) bool { return a.Bookmarks[i].Page < a.Bookmarks[j].Page })
}

func sortNotes(a *entities.Annotations) {
	sort.SliceStable(a.Notes, func(i, j int) bool { return a.Notes[i].Page < a.Notes[j].Page })
}

func copyOf(a *entities.Annotations) entities.Annotations {
	return entities.Annotations{
		Bookmarks:  slices.Clone(a.Bookmarks),
		Highlights: slices.Clone(a.Highlights),
		Notes:      slices.Clone(a.Notes),
	}
}
