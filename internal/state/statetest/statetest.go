// Package statetest builds state stores for tests in other packages.
package statetest

import (
	"context"
	"testing"
	"time"

	"github.com/mrlokans/readworld/internal/notify"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/storage"
)

// UserID is the identity every test store is namespaced by.
const UserID = "user_1700000000000_testuser0"

type fixedIdentity string

func (f fixedIdentity) GetOrCreate(context.Context) string { return string(f) }

// Clock is an adjustable time source.
type Clock struct {
	T time.Time
}

func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// Fixture bundles a loaded store with its backend, feed and clock.
type Fixture struct {
	Store   *state.Store
	Backend *storage.Memory
	Feed    *notify.Feed
	Clock   *Clock
}

// New returns a loaded store over an empty in-memory backend, with its clock at now.
func New(t *testing.T, now time.Time) *Fixture {
	t.Helper()

	f := &Fixture{
		Backend: storage.NewMemory(),
		Feed:    notify.NewFeed(100),
		Clock:   &Clock{T: now},
	}
	f.Store = state.NewStore(f.Backend, fixedIdentity(UserID), f.Feed)
	f.Store.SetClock(f.Clock.Now)
	f.Store.Load(context.Background())
	return f
}

// Reload returns a fresh store reading the same backend.
func (f *Fixture) Reload(t *testing.T) *state.Store {
	t.Helper()
	s := state.NewStore(f.Backend, fixedIdentity(UserID), f.Feed)
	s.SetClock(f.Clock.Now)
	s.Load(context.Background())
	return s
}
