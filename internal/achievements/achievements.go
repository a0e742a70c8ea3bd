// Package achievements unlocks one-time badges when the reading state meets their conditions.
// An unlocked achievement is never revoked.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/notify"
	"github.com/mrlokans/readworld/internal/state"
)

var ErrUnknownAchievement = errors.New("achievements: unknown achievement")

const (
	FirstSave    = "firstSave"
	Streak7      = "streak7"
	BookFinished = "bookFinished"
	Reviews10    = "reviews10"
	Reading30Min = "reading30min"
	Premium      = "premium"
)

type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Trigger     int    `json:"trigger"`

	met func(st *entities.UserState, trigger int) bool
}

// Registry lists every achievement in display order.
var Registry = []Definition{
	{ID: FirstSave, Name: "First Save", Description: "Save your first book", Icon: "📚", Trigger: 1,
		met: func(st *entities.UserState, n int) bool { return len(st.Progress) >= n }},
	{ID: Streak7, Name: "7-Day Streak", Description: "Read 7 days in a row", Icon: "🔥", Trigger: 7,
		met: func(st *entities.UserState, n int) bool { return st.Streak >= n }},
	{ID: BookFinished, Name: "Book Worm", Description: "Finish your first book", Icon: "🏆", Trigger: 1,
		met: func(st *entities.UserState, n int) bool { return st.BooksFinished >= n }},
	{ID: Reviews10, Name: "Critic", Description: "Write 10 reviews", Icon: "✍️", Trigger: 10,
		met: func(st *entities.UserState, n int) bool { return st.ReviewsWritten >= n }},
	{ID: Reading30Min, Name: "Dedicated Reader", Description: "30 minutes in one day", Icon: "⏰", Trigger: 30,
		met: func(st *entities.UserState, n int) bool { return st.ReadingMinutesToday >= n }},
	{ID: Premium, Name: "Premium Member", Description: "Upgrade to Premium", Icon: "⭐", Trigger: 1,
		met: func(st *entities.UserState, _ int) bool { return st.Plan == entities.PlanPremium }},
}

// Lookup returns the definition with the given id.
func Lookup(id string) (Definition, bool) {
	for _, d := range Registry {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Status is a definition together with the identity's progress on it.
type Status struct {
	Definition
	Earned bool  `json:"earned"`
	Date   int64 `json:"date,omitempty"`
}

// UnlockRecorder is told about every unlock, e.g. to keep an activity log.
type UnlockRecorder interface {
	LogAchievement(userID, achievementID, name string)
}

type Engine struct {
	store    *state.Store
	notifier notify.Notifier
	recorder UnlockRecorder
}

func NewEngine(store *state.Store, notifier notify.Notifier) *Engine {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Engine{store: store, notifier: notifier}
}

func (e *Engine) SetRecorder(r UnlockRecorder) {
	e.recorder = r
}

// Unlock marks def earned in st if its condition holds and it is not earned yet.
// Reports whether it was newly unlocked.
func Unlock(st *entities.UserState, def Definition, nowMillis int64) bool {
	if st.Achievements[def.ID].Earned || !def.met(st, def.Trigger) {
		return false
	}
	if st.Achievements == nil {
		st.Achievements = map[string]entities.Achievement{}
	}
	st.Achievements[def.ID] = entities.Achievement{Earned: true, Date: nowMillis}
	return true
}

// Check evaluates one achievement, persisting and announcing it if newly unlocked.
func (e *Engine) Check(ctx context.Context, id string) (bool, error) {
	def, ok := Lookup(id)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownAchievement, id)
	}

	pending := false
	e.store.View(func(st *entities.UserState) {
		pending = !st.Achievements[def.ID].Earned && def.met(st, def.Trigger)
	})
	if !pending {
		return false, nil
	}

	now := e.store.Now().UnixMilli()
	unlocked := false
	err := e.store.Mutate(ctx, func(st *entities.UserState) error {
		unlocked = Unlock(st, def, now)
		return nil
	})
	if err != nil || !unlocked {
		return false, err
	}

	log.Printf("Achievements: unlocked %s", def.ID)
	e.notifier.Notify(notify.LevelSuccess, fmt.Sprintf("🏆 Achievement Unlocked: %s!", def.Name))
	if e.recorder != nil {
		e.recorder.LogAchievement(e.store.UserID(ctx), def.ID, def.Name)
	}
	return true, nil
}

// CheckAll evaluates every achievement in registry order and returns the ids newly unlocked.
func (e *Engine) CheckAll(ctx context.Context) ([]string, error) {
	var unlocked []string
	for _, def := range Registry {
		ok, err := e.Check(ctx, def.ID)
		if err != nil {
			return unlocked, err
		}
		if ok {
			unlocked = append(unlocked, def.ID)
		}
	}
	return unlocked, nil
}

// List returns every definition with its earned status, in registry order.
func (e *Engine) List() []Status {
	out := make([]Status, 0, len(Registry))
	e.store.View(func(st *entities.UserState) {
		for _, def := range Registry {
			a := st.Achievements[def.ID]
			out = append(out, Status{Definition: def, Earned: a.Earned, Date: a.Date})
		}
	})
	return out
}
