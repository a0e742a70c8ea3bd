// Package audit keeps the local activity log: achievements unlocked, exports,
// account actions, settings changes and state resets.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/readworld/internal/database/audit"
	"github.com/mrlokans/readworld/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until background writes have finished.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

// LogAchievement records an achievement unlock.
func (s *Service) LogAchievement(userID, achievementID, name string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAchievement,
		Action:      "achievement_unlock",
		Description: "Unlocked " + name,
		Metadata:    metadata(map[string]any{"achievement": achievementID}),
		Status:      entities.AuditStatusSuccess,
	})
}

// LogExport records an annotation export.
func (s *Service) LogExport(userID, bookID, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventExport,
		Action:      "markdown_export",
		Description: description,
		BookID:      bookID,
		Status:      entities.AuditStatusSuccess,
	}
	markFailed(event, err)
	s.LogAsync(event)
}

// LogAccount records a call to the remote account API.
func (s *Service) LogAccount(userID, action string, err error) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAccount,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
	}
	markFailed(event, err)
	s.LogAsync(event)
}

// LogSettings records a settings change.
func (s *Service) LogSettings(userID, action, description string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogStateReset records that a stored state blob could not be parsed and was replaced by defaults.
func (s *Service) LogStateReset(userID string, cause error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventState,
		Action:      "state_reset",
		Description: "Stored reading state was unreadable and has been reset",
	}
	markFailed(event, cause)
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID string, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func markFailed(event *entities.AuditEvent, err error) {
	if err == nil {
		if event.Status == "" {
			event.Status = entities.AuditStatusSuccess
		}
		return
	}
	event.Status = entities.AuditStatusFailed
	event.ErrorMsg = truncate(err.Error(), 500)
}

func metadata(values map[string]any) string {
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
