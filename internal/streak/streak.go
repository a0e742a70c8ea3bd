// Package streak counts consecutive local calendar days with reading activity.
package streak

import (
	"context"
	"log"
	"time"

	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state"
)

// Advance applies a read event at now to s, comparing calendar dates in loc.
// A second event on the same day changes nothing. An event on the day after the
// last one extends the streak, anything later restarts it at 1. Reading minutes
// for the day are reset whenever the streak moves. Reports whether s changed.
func Advance(s *entities.UserState, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	today := dateOf(now.In(loc))

	if s.LastReadDate != nil {
		last := dateOf(time.UnixMilli(*s.LastReadDate).In(loc))
		switch {
		case last.Equal(today):
			return false
		case last.Equal(today.AddDate(0, 0, -1)):
			s.Streak++
		default:
			s.Streak = 1
		}
	} else {
		s.Streak = 1
	}

	ms := now.UnixMilli()
	s.LastReadDate = &ms
	s.ReadingMinutesToday = 0
	return true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Tracker struct {
	store        *state.Store
	achievements *achievements.Engine
	loc          *time.Location
}

// NewTracker creates a tracker comparing days in loc (time.Local when nil).
func NewTracker(store *state.Store, engine *achievements.Engine, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{store: store, achievements: engine, loc: loc}
}

// RecordReadEvent registers reading activity at now and returns the resulting streak.
func (t *Tracker) RecordReadEvent(ctx context.Context, now time.Time) (int, error) {
	var (
		current int
		changed bool
	)
	err := t.store.Mutate(ctx, func(st *entities.UserState) error {
		changed = Advance(st, now, t.loc)
		current = st.Streak
		return nil
	})
	if err != nil {
		return 0, err
	}

	if changed {
		log.Printf("Streak: now %d day(s)", current)
		if _, err := t.achievements.Check(ctx, achievements.Streak7); err != nil {
			return current, err
		}
	}
	return current, nil
}

// Summary is the streak data shown to the user.
type Summary struct {
	Streak              int    `json:"streak"`
	LastReadDate        *int64 `json:"lastReadDate"`
	ReadingMinutesToday int    `json:"readingMinutesToday"`
}

func (t *Tracker) Current() Summary {
	var out Summary
	t.store.View(func(st *entities.UserState) {
		out = Summary{Streak: st.Streak, ReadingMinutesToday: st.ReadingMinutesToday}
		if st.LastReadDate != nil {
			v := *st.LastReadDate
			out.LastReadDate = &v
		}
	})
	return out
}
