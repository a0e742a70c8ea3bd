// Package state owns the per-identity reading state and its persistence.
//
// Every other component changes the state through Store.Mutate, which applies the
// change and writes the whole state back before returning. Reads go through View
// or Snapshot.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/notify"
	"github.com/mrlokans/readworld/internal/storage"
)

// ErrCorruptState is reported when a stored state record is not a JSON object.
var ErrCorruptState = errors.New("state: stored state is corrupt")

// IdentitySource yields the identifier the state record is namespaced by.
type IdentitySource interface {
	GetOrCreate(ctx context.Context) string
}

// ResetRecorder is told when a corrupt record was replaced by defaults.
type ResetRecorder interface {
	LogStateReset(userID string, cause error)
}

type Store struct {
	backend  storage.Backend
	identity IdentitySource
	notifier notify.Notifier
	resets   ResetRecorder
	now      func() time.Time

	mu     sync.RWMutex
	state  entities.UserState
	loaded bool
}

func NewStore(backend storage.Backend, identity IdentitySource, notifier notify.Notifier) *Store {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Store{
		backend:  backend,
		identity: identity,
		notifier: notifier,
		now:      time.Now,
		state:    Default(),
	}
}

// SetClock replaces the time source. Call it before the store is shared.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// SetResetRecorder registers r to be told about corrupt records.
func (s *Store) SetResetRecorder(r ResetRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = r
}

// Key returns the storage key of the current identity's state record.
// It is derived on every call so a changed identity is picked up.
func (s *Store) Key(ctx context.Context) string {
	return entities.RecordKeyStatePrefix + s.identity.GetOrCreate(ctx)
}

// UserID returns the current identity.
func (s *Store) UserID(ctx context.Context) string {
	return s.identity.GetOrCreate(ctx)
}

// Load reads the stored state, merges it over the defaults, normalizes it,
// rolls the monthly counters over and writes the result back.
// An absent or unreadable record yields the default state. Load never fails.
func (s *Store) Load(ctx context.Context) entities.UserState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked(ctx)
	return Clone(s.state)
}

func (s *Store) loadLocked(ctx context.Context) {
	key := s.Key(ctx)
	loaded := Default()

	raw, err := s.backend.Get(ctx, key)
	switch {
	case err == nil:
		dropped, decodeErr := decode(raw, &loaded)
		if decodeErr != nil {
			log.Printf("State store: %v, starting from defaults", decodeErr)
			s.notifier.Notify(notify.LevelWarning, "Your saved reading data could not be read and was reset.")
			if s.resets != nil {
				s.resets.LogStateReset(s.identity.GetOrCreate(ctx), decodeErr)
			}
			loaded = Default()
		} else if len(dropped) > 0 {
			log.Printf("State store: skipped unreadable fields %v under %s, kept the rest", dropped, key)
			s.notifier.Notify(notify.LevelWarning, "Part of your saved reading data could not be read and was reset.")
		}
	case errors.Is(err, storage.ErrNotFound):
		log.Printf("State store: no saved state under %s, starting from defaults", key)
	default:
		log.Printf("State store: failed to read %s: %v", key, err)
		s.notifier.Notify(notify.LevelWarning, "Saved reading data is unavailable. Changes will only last until you close the app.")
	}

	Normalize(&loaded)
	Rollover(&loaded, MonthKey(s.now()))

	s.state = loaded
	s.loaded = true
	_ = s.saveLocked(ctx)
}

// decode merges a stored record over the defaults already in dst.
// Top-level keys present in the record replace the defaults; absent keys keep them.
// Each key is decoded on its own: a key whose value has the wrong shape keeps its
// default and is returned in dropped. Only a record that is not a JSON object is corrupt.
func decode(raw string, dst *entities.UserState) (dropped []string, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		field, err := json.Marshal(map[string]json.RawMessage{key: fields[key]})
		if err != nil {
			dropped = append(dropped, key)
			continue
		}
		// Decode into a scratch value first so a failing key leaves dst untouched.
		var scratch entities.UserState
		if err := json.Unmarshal(field, &scratch); err != nil {
			log.Printf("State store: dropping field %q: %v", key, err)
			dropped = append(dropped, key)
			continue
		}
		if err := json.Unmarshal(field, dst); err != nil {
			log.Printf("State store: dropping field %q: %v", key, err)
			dropped = append(dropped, key)
		}
	}
	return dropped, nil
}

// Save writes the whole state under the current identity's key.
// Failures are logged and reported to the notifier; the error is returned for
// callers that want it, but the in-memory state stays authoritative.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		// Never overwrite a stored record with defaults that were not merged with it.
		s.loadLocked(ctx)
	}
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	data, err := json.Marshal(s.state)
	if err != nil {
		log.Printf("State store: failed to encode state: %v", err)
		return fmt.Errorf("failed to encode state: %w", err)
	}

	key := s.Key(ctx)
	if err := s.backend.Set(ctx, key, string(data)); err != nil {
		log.Printf("State store: could not save state under %s: %v", key, err)
		s.notifier.Notify(notify.LevelWarning, "Could not save your reading data. Changes will only last until you close the app.")
		return err
	}
	return nil
}

// Mutate applies fn to the live state and saves it. If fn returns an error nothing is
// saved and the error is returned; fn must not leave partial changes behind in that case.
// Save failures are reported like Save's and do not fail the mutation.
func (s *Store) Mutate(ctx context.Context, fn func(st *entities.UserState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.loadLocked(ctx)
	}

	if err := fn(&s.state); err != nil {
		return err
	}
	_ = s.saveLocked(ctx)
	return nil
}

// View runs fn with read-only access to the live state. fn must not retain or modify it.
func (s *Store) View(fn func(st *entities.UserState)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() entities.UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.state)
}

// Rollover applies the monthly counter rollover for the current time and saves
// if anything changed. Used by long-running processes crossing a month boundary.
func (s *Store) Rollover(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.loadLocked(ctx)
		return true
	}
	if !Rollover(&s.state, MonthKey(s.now())) {
		return false
	}
	_ = s.saveLocked(ctx)
	return true
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}
