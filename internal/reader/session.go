// Package reader drives a single open book: it resumes saved progress, routes
// navigation to the rendering service matching the book's format and writes
// progress back into the user state.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/library"
	"github.com/mrlokans/readworld/internal/notify"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/streak"
)

var (
	ErrBookNotFound  = errors.New("reader: book not found")
	ErrUnknownFormat = errors.New("reader: unknown book format")
	ErrDocumentLoad  = errors.New("reader: document failed to load")
	ErrNoPosition    = errors.New("reader: no reading position reported yet")
	ErrNotOpen       = errors.New("reader: no book is open")
	ErrSuperseded    = errors.New("reader: open superseded by a later request")
)

// MinutesPerSave is the reading time credited for each explicit progress save.
const MinutesPerSave = 5

type Phase string

const (
	PhaseClosed  Phase = "closed"
	PhaseOpening Phase = "opening"
	PhaseOpen    Phase = "open"
)

// Renderers maps formats to the services that display them. Either may be nil.
type Renderers struct {
	Paginated PaginatedService
	Location  LocationService
}

type Session struct {
	store        *state.Store
	catalog      *catalog.Catalog
	achievements *achievements.Engine
	streak       *streak.Tracker
	notifier     notify.Notifier
	renderers    Renderers

	mu         sync.Mutex
	phase      Phase
	generation uint64
	book       entities.Book
	page       int
	total      int
	position   string
	fraction   float64
}

func NewSession(store *state.Store, cat *catalog.Catalog, engine *achievements.Engine, tracker *streak.Tracker, notifier notify.Notifier, renderers Renderers) *Session {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Session{
		store:        store,
		catalog:      cat,
		achievements: engine,
		streak:       tracker,
		notifier:     notifier,
		renderers:    renderers,
		phase:        PhaseClosed,
	}
}

// Status is a snapshot of the session.
type Status struct {
	Phase      Phase           `json:"phase"`
	BookID     string          `json:"bookId,omitempty"`
	Format     entities.Format `json:"format,omitempty"`
	Page       int             `json:"page,omitempty"`
	TotalPages int             `json:"totalPages,omitempty"`
	Position   string          `json:"position,omitempty"`
	Fraction   float64         `json:"fraction,omitempty"`
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	if s.phase == PhaseClosed {
		return Status{Phase: PhaseClosed}
	}
	return Status{
		Phase:      s.phase,
		BookID:     s.book.ID,
		Format:     s.book.Format,
		Page:       s.page,
		TotalPages: s.total,
		Position:   s.position,
		Fraction:   s.fraction,
	}
}

// Open loads bookID, resuming from its saved progress. A later Open, or Close,
// while this one is still loading wins: this call then returns ErrSuperseded
// and leaves the session alone.
func (s *Session) Open(ctx context.Context, bookID string) (Status, error) {
	book, ok := s.catalog.Find(bookID)
	if !ok {
		s.notifier.Notify(notify.LevelError, "Book not found.")
		return s.Status(), fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	if !s.canRender(book.Format) {
		s.notifier.Notify(notify.LevelError, "Unknown book format.")
		return s.Status(), fmt.Errorf("%w: %q", ErrUnknownFormat, book.Format)
	}

	var saved entities.Progress
	s.store.View(func(st *entities.UserState) { saved = st.Progress[bookID] })

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.phase = PhaseOpening
	s.book = book
	s.page, s.total = 0, 0
	s.position, s.fraction = "", 0
	s.mu.Unlock()

	s.recordOpened(ctx, bookID)

	var (
		page, total int
		err         error
	)
	switch book.Format {
	case entities.FormatPDF:
		total, err = s.renderers.Paginated.Load(ctx, book.FileURL)
		if err == nil {
			page = clampPage(max(saved.Page, 1), total)
			err = s.renderers.Paginated.RenderPage(ctx, page)
		}
	case entities.FormatEPUB:
		err = s.renderers.Location.Load(ctx, book.FileURL, saved.CFI, s.relocatedFor(gen))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		log.Printf("Reader: discarding stale load of %s", bookID)
		return s.statusLocked(), ErrSuperseded
	}
	if err != nil {
		s.closeLocked()
		log.Printf("Reader: failed to load %s: %v", bookID, err)
		s.notifier.Notify(notify.LevelError, "Failed to load book. Please try again.")
		return s.statusLocked(), fmt.Errorf("%w: %s: %v", ErrDocumentLoad, bookID, err)
	}
	s.phase = PhaseOpen
	s.page, s.total = page, total
	return s.statusLocked(), nil
}

func (s *Session) canRender(f entities.Format) bool {
	switch f {
	case entities.FormatPDF:
		return s.renderers.Paginated != nil
	case entities.FormatEPUB:
		return s.renderers.Location != nil
	}
	return false
}

// recordOpened moves the book to the front of the recent list, stamps the open
// time and counts the read toward the streak. Failures only lose bookkeeping.
func (s *Session) recordOpened(ctx context.Context, bookID string) {
	now := s.store.Now()
	err := s.store.Mutate(ctx, func(st *entities.UserState) error {
		library.PushRecent(st, bookID)
		st.LastOpened[bookID] = now.UnixMilli()
		return nil
	})
	if err != nil {
		log.Printf("Reader: failed to record open of %s: %v", bookID, err)
	}
	if _, err := s.streak.RecordReadEvent(ctx, now); err != nil {
		log.Printf("Reader: failed to record read event: %v", err)
	}
}

func clampPage(page, total int) int {
	return min(max(page, 1), max(total, 1))
}

func (s *Session) relocatedFor(gen uint64) RelocatedFunc {
	return func(position string, fraction float64) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation || s.phase == PhaseClosed {
			return
		}
		s.position, s.fraction = position, fraction
	}
}

// Relocated records a position reported by a renderer running outside the
// process, such as one in the browser.
func (s *Session) Relocated(position string, fraction float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseClosed || s.book.Format != entities.FormatEPUB {
		return ErrNotOpen
	}
	s.position, s.fraction = position, fraction
	return nil
}

// ChangePage moves delta pages for paginated books, or one location forward or
// back for location-addressed books. Moving past either end is a no-op.
// Progress is auto-saved when the autoSave preference is on.
func (s *Session) ChangePage(ctx context.Context, delta int) (Status, error) {
	s.mu.Lock()
	if s.phase != PhaseOpen {
		s.mu.Unlock()
		return s.Status(), ErrNotOpen
	}
	format := s.book.Format
	gen := s.generation
	target := s.page + delta
	if format == entities.FormatPDF {
		if delta == 0 || target < 1 || target > s.total {
			status := s.statusLocked()
			s.mu.Unlock()
			return status, nil
		}
	}
	s.mu.Unlock()

	var err error
	switch {
	case format == entities.FormatPDF:
		err = s.renderers.Paginated.RenderPage(ctx, target)
	case delta > 0:
		err = s.renderers.Location.Next(ctx)
	case delta < 0:
		err = s.renderers.Location.Previous(ctx)
	}
	if err != nil {
		log.Printf("Reader: navigation failed: %v", err)
		s.notifier.Notify(notify.LevelWarning, "Navigation error. Please wait for the book to load fully.")
		return s.Status(), err
	}

	if format == entities.FormatPDF {
		// The page only moves once it is on screen, and only for the book it was rendered for.
		s.mu.Lock()
		if gen != s.generation || s.phase != PhaseOpen {
			status := s.statusLocked()
			s.mu.Unlock()
			return status, ErrSuperseded
		}
		s.page = target
		s.mu.Unlock()
	}

	s.autoSave(ctx)
	return s.Status(), nil
}

// currentProgress returns the progress entry for the open book.
func (s *Session) currentProgress() (string, entities.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseOpen {
		return "", entities.Progress{}, ErrNotOpen
	}
	if s.book.Format == entities.FormatEPUB {
		if s.position == "" {
			return s.book.ID, entities.Progress{}, ErrNoPosition
		}
		return s.book.ID, entities.Progress{Page: 0, CFI: s.position}, nil
	}
	return s.book.ID, entities.Progress{Page: s.page}, nil
}

func (s *Session) autoSave(ctx context.Context) {
	enabled := false
	s.store.View(func(st *entities.UserState) { enabled = st.Preferences.AutoSave })
	if !enabled {
		return
	}
	bookID, p, err := s.currentProgress()
	if err != nil {
		return
	}
	_ = s.store.Mutate(ctx, func(st *entities.UserState) error {
		st.Progress[bookID] = p
		return nil
	})
}

// SaveProgress stores the current position, counts the save toward this month and
// credits MinutesPerSave reading minutes.
func (s *Session) SaveProgress(ctx context.Context) (entities.Progress, error) {
	bookID, p, err := s.currentProgress()
	if errors.Is(err, ErrNoPosition) {
		s.notifier.Notify(notify.LevelWarning, "Open at least one page before saving.")
	}
	if err != nil {
		return entities.Progress{}, err
	}

	monthKey := state.MonthKey(s.store.Now())
	err = s.store.Mutate(ctx, func(st *entities.UserState) error {
		st.Progress[bookID] = p
		state.Rollover(st, monthKey)
		st.SavedThisMonth++
		st.ReadingMinutesToday += MinutesPerSave
		return nil
	})
	if err != nil {
		return p, err
	}
	s.notifier.Notify(notify.LevelSuccess, "Progress saved!")

	// Auto-save may have written progress already, so firstSave is checked on
	// every explicit save rather than only when the map was empty.
	if _, err := s.achievements.Check(ctx, achievements.FirstSave); err != nil {
		return p, err
	}
	if _, err := s.achievements.Check(ctx, achievements.Reading30Min); err != nil {
		return p, err
	}
	return p, nil
}

// MarkFinished counts the open book as finished. Each book counts once; the
// return value reports whether this call counted it.
func (s *Session) MarkFinished(ctx context.Context) (bool, error) {
	s.mu.Lock()
	open := s.phase == PhaseOpen
	bookID := s.book.ID
	s.mu.Unlock()
	if !open {
		return false, ErrNotOpen
	}

	counted := false
	err := s.store.Mutate(ctx, func(st *entities.UserState) error {
		if slices.Contains(st.FinishedBooks, bookID) {
			return nil
		}
		st.FinishedBooks = append(st.FinishedBooks, bookID)
		st.BooksFinished++
		counted = true
		return nil
	})
	if err != nil || !counted {
		return false, err
	}

	if _, err := s.achievements.Check(ctx, achievements.BookFinished); err != nil {
		return true, err
	}
	return true, nil
}

// Close ends the session. Loads still in flight are discarded when they complete.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	s.generation++
	s.phase = PhaseClosed
	s.book = entities.Book{}
	s.page, s.total = 0, 0
	s.position, s.fraction = "", 0
}
