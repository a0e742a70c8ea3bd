package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state/statetest"
)

type recorder struct{ unlocked []string }

func (r *recorder) LogAchievement(userID, achievementID, name string) {
	r.unlocked = append(r.unlocked, achievementID)
}

var testNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Engine, *statetest.Fixture, *recorder) {
	f := statetest.New(t, testNow)
	e := NewEngine(f.Store, f.Feed)
	r := &recorder{}
	e.SetRecorder(r)
	return e, f, r
}

func mutate(t *testing.T, f *statetest.Fixture, fn func(st *entities.UserState)) {
	t.Helper()
	require.NoError(t, f.Store.Mutate(context.Background(), func(st *entities.UserState) error {
		fn(st)
		return nil
	}))
}

func TestEngine_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("condition not met", func(t *testing.T) {
		e, f, _ := setup(t)
		ok, err := e.Check(ctx, FirstSave)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, f.Feed.Pending())
	})

	t.Run("unlocks once and notifies", func(t *testing.T) {
		e, f, r := setup(t)
		mutate(t, f, func(st *entities.UserState) { st.Progress["astro-1"] = entities.Progress{Page: 1} })

		ok, err := e.Check(ctx, FirstSave)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = e.Check(ctx, FirstSave)
		require.NoError(t, err)
		assert.False(t, ok)

		notes := f.Feed.Drain()
		require.Len(t, notes, 1)
		assert.Equal(t, "🏆 Achievement Unlocked: First Save!", notes[0].Message)
		assert.Equal(t, []string{FirstSave}, r.unlocked)

		snap := f.Store.Snapshot()
		assert.Equal(t, entities.Achievement{Earned: true, Date: testNow.UnixMilli()}, snap.Achievements[FirstSave])
	})

	t.Run("never revoked", func(t *testing.T) {
		e, f, _ := setup(t)
		mutate(t, f, func(st *entities.UserState) { st.Plan = entities.PlanPremium })
		_, err := e.Check(ctx, Premium)
		require.NoError(t, err)

		mutate(t, f, func(st *entities.UserState) { st.Plan = entities.PlanFree })
		_, err = e.CheckAll(ctx)
		require.NoError(t, err)

		assert.True(t, f.Reload(t).Snapshot().Achievements[Premium].Earned)
	})

	t.Run("unknown id", func(t *testing.T) {
		e, _, _ := setup(t)
		_, err := e.Check(ctx, "speedReader")
		assert.ErrorIs(t, err, ErrUnknownAchievement)
	})
}

func TestEngine_CheckAll(t *testing.T) {
	e, f, _ := setup(t)
	mutate(t, f, func(st *entities.UserState) {
		st.Streak = 7
		st.ReviewsWritten = 10
		st.ReadingMinutesToday = 30
		st.BooksFinished = 1
	})

	unlocked, err := e.CheckAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{Streak7, BookFinished, Reviews10, Reading30Min}, unlocked)

	list := e.List()
	require.Len(t, list, len(Registry))
	assert.Equal(t, FirstSave, list[0].ID)
	assert.False(t, list[0].Earned)
	assert.True(t, list[1].Earned)
	assert.Equal(t, "🔥", list[1].Icon)
}

func TestLookup(t *testing.T) {
	def, ok := Lookup(Reading30Min)
	require.True(t, ok)
	assert.Equal(t, "Dedicated Reader", def.Name)
	assert.Equal(t, 30, def.Trigger)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}
