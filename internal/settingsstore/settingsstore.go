package settingsstore

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/storage"
	"github.com/mrlokans/readworld/internal/validation"
)

// Sources reported by the *Info getters.
const (
	SourceStored      = "stored"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

const (
	EnvExportDir        = "READWORLD_EXPORT_DIR"
	EnvRolloverSchedule = "READWORLD_ROLLOVER_SCHEDULE"

	// DefaultRolloverSchedule runs at midnight on the first of every month.
	DefaultRolloverSchedule = "0 0 1 * *"
)

// SettingsRecorder receives a line for every user-visible settings change.
type SettingsRecorder interface {
	LogSettings(userID, action, description string)
}

// SettingsStore owns the reader settings kept in the user state and the operator
// settings kept as plain records.
// Operator settings resolve as: stored record > environment > default.
type SettingsStore struct {
	records   storage.Backend
	store     *state.Store
	validator *validation.Validator
	recorder  SettingsRecorder
	loc       *time.Location
	pick      func(n int) int
}

func New(records storage.Backend, store *state.Store) *SettingsStore {
	return &SettingsStore{
		records:   records,
		store:     store,
		validator: validation.New(),
		loc:       time.Local,
		pick:      randomIndex,
	}
}

// SetRecorder attaches the activity log.
func (s *SettingsStore) SetRecorder(r SettingsRecorder) {
	s.recorder = r
}

// SetLocation sets the zone in which "today" is evaluated for the daily quote.
func (s *SettingsStore) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

func (s *SettingsStore) record(ctx context.Context, action, description string) {
	if s.recorder != nil {
		s.recorder.LogSettings(s.store.UserID(ctx), action, description)
	}
}

// stored returns a non-empty record value, or "" when absent or unreadable.
func (s *SettingsStore) stored(ctx context.Context, key string) string {
	value, err := s.records.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Settings: failed to read %s: %v", key, err)
		}
		return ""
	}
	return value
}

func (s *SettingsStore) clear(ctx context.Context, key string) error {
	err := s.records.Delete(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// ExportDir is where annotation exports are written.
func (s *SettingsStore) ExportDir(ctx context.Context) string {
	if v := s.stored(ctx, entities.RecordKeyExportDir); v != "" {
		return v
	}
	if v := os.Getenv(EnvExportDir); v != "" {
		return v
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return pwd
}

func (s *SettingsStore) ExportDirSource(ctx context.Context) string {
	if s.stored(ctx, entities.RecordKeyExportDir) != "" {
		return SourceStored
	}
	if os.Getenv(EnvExportDir) != "" {
		return SourceEnvironment
	}
	return SourceDefault
}

func (s *SettingsStore) SetExportDir(ctx context.Context, path string) error {
	return s.records.Set(ctx, entities.RecordKeyExportDir, path)
}

func (s *SettingsStore) ClearExportDir(ctx context.Context) error {
	return s.clear(ctx, entities.RecordKeyExportDir)
}

type SettingInfo struct {
	Value  string `json:"value"`
	Source string `json:"source"` // "stored", "environment", or "default"
}

func (s *SettingsStore) ExportDirInfo(ctx context.Context) SettingInfo {
	return SettingInfo{Value: s.ExportDir(ctx), Source: s.ExportDirSource(ctx)}
}

// RolloverSchedule is the cron expression the month rollover job runs on.
func (s *SettingsStore) RolloverSchedule(ctx context.Context) string {
	if v := s.stored(ctx, entities.RecordKeyRolloverSchedule); v != "" {
		return v
	}
	if v := os.Getenv(EnvRolloverSchedule); v != "" {
		return v
	}
	return DefaultRolloverSchedule
}

func (s *SettingsStore) RolloverScheduleSource(ctx context.Context) string {
	if s.stored(ctx, entities.RecordKeyRolloverSchedule) != "" {
		return SourceStored
	}
	if os.Getenv(EnvRolloverSchedule) != "" {
		return SourceEnvironment
	}
	return SourceDefault
}

// SetRolloverSchedule stores a schedule after checking it parses.
func (s *SettingsStore) SetRolloverSchedule(ctx context.Context, schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return err
	}
	return s.records.Set(ctx, entities.RecordKeyRolloverSchedule, schedule)
}

func (s *SettingsStore) ClearRolloverSchedule(ctx context.Context) error {
	return s.clear(ctx, entities.RecordKeyRolloverSchedule)
}

func (s *SettingsStore) RolloverScheduleInfo(ctx context.Context) SettingInfo {
	return SettingInfo{Value: s.RolloverSchedule(ctx), Source: s.RolloverScheduleSource(ctx)}
}
