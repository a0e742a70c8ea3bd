package settingsstore

import (
	"context"
	"fmt"
	"math"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state"
)

const (
	FontSizeStep = 2
	ZoomStep     = 0.1
)

// AccessibilityPatch carries the fields to change; nil fields are left alone.
type AccessibilityPatch struct {
	FontSize      *int            `json:"fontSize,omitempty"`
	Theme         *entities.Theme `json:"theme,omitempty"`
	HighContrast  *bool           `json:"highContrast,omitempty"`
	DyslexicFont  *bool           `json:"dyslexicFont,omitempty"`
	ReducedMotion *bool           `json:"reducedMotion,omitempty"`
	ScreenReader  *bool           `json:"screenReader,omitempty"`
	Zoom          *float64        `json:"zoom,omitempty"`
	DarkMode      *bool           `json:"darkMode,omitempty"`
	ColorBlind    *bool           `json:"colorBlind,omitempty"`
}

func (p AccessibilityPatch) apply(a *entities.Accessibility) {
	if p.FontSize != nil {
		a.FontSize = *p.FontSize
	}
	if p.Theme != nil {
		a.Theme = *p.Theme
	}
	if p.Zoom != nil {
		a.Zoom = *p.Zoom
	}
	setBool(&a.HighContrast, p.HighContrast)
	setBool(&a.DyslexicFont, p.DyslexicFont)
	setBool(&a.ReducedMotion, p.ReducedMotion)
	setBool(&a.ScreenReader, p.ScreenReader)
	setBool(&a.DarkMode, p.DarkMode)
	setBool(&a.ColorBlind, p.ColorBlind)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (s *SettingsStore) Accessibility() entities.Accessibility {
	var a entities.Accessibility
	s.store.View(func(st *entities.UserState) { a = st.Accessibility })
	return a
}

// UpdateAccessibility applies patch as a whole or not at all. Out-of-range values
// are rejected rather than clamped.
func (s *SettingsStore) UpdateAccessibility(ctx context.Context, patch AccessibilityPatch) (entities.Accessibility, error) {
	next := s.Accessibility()
	patch.apply(&next)
	if err := s.validator.Validate(next); err != nil {
		return s.Accessibility(), err
	}

	err := s.store.Mutate(ctx, func(st *entities.UserState) error {
		patch.apply(&st.Accessibility)
		next = st.Accessibility
		return nil
	})
	if err == nil {
		s.record(ctx, "accessibility", fmt.Sprintf("theme=%s fontSize=%d zoom=%.2f", next.Theme, next.FontSize, next.Zoom))
	}
	return next, err
}

// AdjustFontSize moves the reader font size by delta points, clamped to [10,32].
func (s *SettingsStore) AdjustFontSize(ctx context.Context, delta int) (int, error) {
	return s.setFontSize(ctx, func(current int) int { return state.ClampFontSize(current + delta) })
}

func (s *SettingsStore) ResetFontSize(ctx context.Context) (int, error) {
	return s.setFontSize(ctx, func(int) int { return state.DefaultFontSize })
}

func (s *SettingsStore) setFontSize(ctx context.Context, next func(current int) int) (int, error) {
	var size int
	err := s.store.Mutate(ctx, func(st *entities.UserState) error {
		st.Accessibility.FontSize = next(st.Accessibility.FontSize)
		size = st.Accessibility.FontSize
		return nil
	})
	return size, err
}

// AdjustZoom moves the zoom factor by delta, clamped to [0.5,2.0] and kept to two decimals.
func (s *SettingsStore) AdjustZoom(ctx context.Context, delta float64) (float64, error) {
	return s.setZoom(ctx, func(current float64) float64 {
		if current == 0 {
			current = state.DefaultZoom
		}
		return state.ClampZoom(math.Round((current+delta)*100) / 100)
	})
}

func (s *SettingsStore) ResetZoom(ctx context.Context) (float64, error) {
	return s.setZoom(ctx, func(float64) float64 { return state.DefaultZoom })
}

func (s *SettingsStore) setZoom(ctx context.Context, next func(current float64) float64) (float64, error) {
	var zoom float64
	err := s.store.Mutate(ctx, func(st *entities.UserState) error {
		st.Accessibility.Zoom = next(st.Accessibility.Zoom)
		zoom = st.Accessibility.Zoom
		return nil
	})
	return zoom, err
}

type PreferencesPatch struct {
	AutoSave            *bool `json:"autoSave,omitempty"`
	ShowRecommendations *bool `json:"showRecommendations,omitempty"`
	ShowDailyQuote      *bool `json:"showDailyQuote,omitempty"`
	ShowAI              *bool `json:"showAI,omitempty"`
}

func (s *SettingsStore) Preferences() entities.Preferences {
	var p entities.Preferences
	s.store.View(func(st *entities.UserState) { p = st.Preferences })
	return p
}

func (s *SettingsStore) UpdatePreferences(ctx context.Context, patch PreferencesPatch) (entities.Preferences, error) {
	var p entities.Preferences
	err := s.store.Mutate(ctx, func(st *entities.UserState) error {
		setBool(&st.Preferences.AutoSave, patch.AutoSave)
		setBool(&st.Preferences.ShowRecommendations, patch.ShowRecommendations)
		setBool(&st.Preferences.ShowDailyQuote, patch.ShowDailyQuote)
		setBool(&st.Preferences.ShowAI, patch.ShowAI)
		p = st.Preferences
		return nil
	})
	if err == nil {
		s.record(ctx, "preferences", fmt.Sprintf("autoSave=%t showDailyQuote=%t", p.AutoSave, p.ShowDailyQuote))
	}
	return p, err
}
