package settingsstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state/statetest"
	"github.com/mrlokans/readworld/internal/validation"
)

var testNow = time.Date(2024, 5, 20, 22, 30, 0, 0, time.UTC)

type recorder struct{ actions []string }

func (r *recorder) LogSettings(userID, action, description string) {
	r.actions = append(r.actions, action)
}

func setup(t *testing.T) (*SettingsStore, *statetest.Fixture) {
	t.Helper()
	f := statetest.New(t, testNow)
	s := New(f.Backend, f.Store)
	s.SetLocation(time.UTC)
	s.pick = func(int) int { return 1 }
	return s, f
}

func TestExportDir(t *testing.T) {
	ctx := context.Background()

	t.Run("stored value wins", func(t *testing.T) {
		s, _ := setup(t)
		t.Setenv(EnvExportDir, "/env/exports")
		require.NoError(t, s.SetExportDir(ctx, "/custom/path"))

		assert.Equal(t, SettingInfo{Value: "/custom/path", Source: SourceStored}, s.ExportDirInfo(ctx))
	})

	t.Run("environment when nothing stored", func(t *testing.T) {
		s, _ := setup(t)
		t.Setenv(EnvExportDir, "/env/exports")

		assert.Equal(t, SettingInfo{Value: "/env/exports", Source: SourceEnvironment}, s.ExportDirInfo(ctx))
	})

	t.Run("working directory by default", func(t *testing.T) {
		s, _ := setup(t)
		t.Setenv(EnvExportDir, "")
		pwd, err := os.Getwd()
		require.NoError(t, err)

		assert.Equal(t, SettingInfo{Value: pwd, Source: SourceDefault}, s.ExportDirInfo(ctx))
	})

	t.Run("clear reverts and tolerates absence", func(t *testing.T) {
		s, _ := setup(t)
		t.Setenv(EnvExportDir, "/env/exports")
		require.NoError(t, s.SetExportDir(ctx, "/custom/path"))
		require.NoError(t, s.ClearExportDir(ctx))
		require.NoError(t, s.ClearExportDir(ctx))

		assert.Equal(t, "/env/exports", s.ExportDir(ctx))
	})
}

func TestRolloverSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("default", func(t *testing.T) {
		s, _ := setup(t)
		t.Setenv(EnvRolloverSchedule, "")
		assert.Equal(t, SettingInfo{Value: DefaultRolloverSchedule, Source: SourceDefault}, s.RolloverScheduleInfo(ctx))
	})

	t.Run("environment", func(t *testing.T) {
		s, _ := setup(t)
		t.Setenv(EnvRolloverSchedule, "0 0 * * *")
		assert.Equal(t, "0 0 * * *", s.RolloverSchedule(ctx))
		assert.Equal(t, SourceEnvironment, s.RolloverScheduleSource(ctx))
	})

	t.Run("rejects invalid schedule", func(t *testing.T) {
		s, _ := setup(t)
		t.Setenv(EnvRolloverSchedule, "")
		assert.Error(t, s.SetRolloverSchedule(ctx, "every month"))
		assert.Equal(t, DefaultRolloverSchedule, s.RolloverSchedule(ctx))

		require.NoError(t, s.SetRolloverSchedule(ctx, "0 1 1 * *"))
		assert.Equal(t, SourceStored, s.RolloverScheduleSource(ctx))

		require.NoError(t, s.ClearRolloverSchedule(ctx))
		assert.Equal(t, DefaultRolloverSchedule, s.RolloverSchedule(ctx))
	})
}

func TestAccessibility(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update", func(t *testing.T) {
		s, f := setup(t)
		r := &recorder{}
		s.SetRecorder(r)

		theme := entities.ThemeSepia
		dyslexic := true
		got, err := s.UpdateAccessibility(ctx, AccessibilityPatch{Theme: &theme, DyslexicFont: &dyslexic})
		require.NoError(t, err)

		assert.Equal(t, entities.ThemeSepia, got.Theme)
		assert.True(t, got.DyslexicFont)
		assert.Equal(t, 16, got.FontSize)
		assert.Equal(t, got, f.Reload(t).Snapshot().Accessibility)
		assert.Equal(t, []string{"accessibility"}, r.actions)
	})

	t.Run("invalid patch changes nothing", func(t *testing.T) {
		s, _ := setup(t)

		size := 40
		theme := entities.Theme("neon")
		_, err := s.UpdateAccessibility(ctx, AccessibilityPatch{FontSize: &size, Theme: &theme})

		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("fontSize"))
		assert.True(t, verr.Has("theme"))
		assert.Equal(t, entities.ThemeLight, s.Accessibility().Theme)
		assert.Equal(t, 16, s.Accessibility().FontSize)
	})

	t.Run("font size steps and clamps", func(t *testing.T) {
		s, _ := setup(t)

		size, err := s.AdjustFontSize(ctx, FontSizeStep)
		require.NoError(t, err)
		assert.Equal(t, 18, size)

		for i := 0; i < 10; i++ {
			size, err = s.AdjustFontSize(ctx, FontSizeStep)
			require.NoError(t, err)
		}
		assert.Equal(t, 32, size)

		size, err = s.AdjustFontSize(ctx, -100)
		require.NoError(t, err)
		assert.Equal(t, 10, size)

		size, err = s.ResetFontSize(ctx)
		require.NoError(t, err)
		assert.Equal(t, 16, size)
	})

	t.Run("zoom steps and clamps", func(t *testing.T) {
		s, _ := setup(t)

		zoom, err := s.AdjustZoom(ctx, ZoomStep)
		require.NoError(t, err)
		assert.Equal(t, 1.1, zoom)

		zoom, err = s.AdjustZoom(ctx, ZoomStep)
		require.NoError(t, err)
		assert.Equal(t, 1.2, zoom)

		zoom, err = s.AdjustZoom(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 2.0, zoom)

		zoom, err = s.AdjustZoom(ctx, -5)
		require.NoError(t, err)
		assert.Equal(t, 0.5, zoom)

		zoom, err = s.ResetZoom(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.0, zoom)
	})
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	s, f := setup(t)

	off := false
	p, err := s.UpdatePreferences(ctx, PreferencesPatch{AutoSave: &off})
	require.NoError(t, err)

	assert.False(t, p.AutoSave)
	assert.True(t, p.ShowDailyQuote)
	assert.Equal(t, p, f.Reload(t).Snapshot().Preferences)
}

func TestDailyQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("once per local day", func(t *testing.T) {
		s, f := setup(t)

		q, ok := s.DailyQuote(ctx)
		require.True(t, ok)
		assert.Equal(t, Quotes[1], q)

		_, ok = s.DailyQuote(ctx)
		assert.False(t, ok)

		stored, err := f.Backend.Get(ctx, entities.RecordKeyLastQuoteDate)
		require.NoError(t, err)
		assert.Equal(t, "Mon May 20 2024", stored)

		f.Clock.Advance(2 * time.Hour)
		_, ok = s.DailyQuote(ctx)
		assert.True(t, ok)
	})

	t.Run("local zone decides the day", func(t *testing.T) {
		s, f := setup(t)
		s.SetLocation(time.FixedZone("UTC+3", 3*60*60))

		_, ok := s.DailyQuote(ctx)
		require.True(t, ok)

		stored, err := f.Backend.Get(ctx, entities.RecordKeyLastQuoteDate)
		require.NoError(t, err)
		assert.Equal(t, "Tue May 21 2024", stored)
	})

	t.Run("disabled by preference", func(t *testing.T) {
		s, _ := setup(t)
		off := false
		_, err := s.UpdatePreferences(ctx, PreferencesPatch{ShowDailyQuote: &off})
		require.NoError(t, err)

		_, ok := s.DailyQuote(ctx)
		assert.False(t, ok)
	})
}
