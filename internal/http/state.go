package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/audit"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/notify"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/streak"
)

// StateController exposes the user state and what is derived from it.
type StateController struct {
	store         *state.Store
	achievements  *achievements.Engine
	streak        *streak.Tracker
	notifications *notify.Feed
	audit         *audit.Service
}

func NewStateController(store *state.Store, engine *achievements.Engine, tracker *streak.Tracker, feed *notify.Feed, auditService *audit.Service) *StateController {
	return &StateController{
		store:         store,
		achievements:  engine,
		streak:        tracker,
		notifications: feed,
		audit:         auditService,
	}
}

// GetState handles GET /api/state. It serves the live state; storage is only read at startup.
func (sc *StateController) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, sc.store.Snapshot())
}

// GetIdentity handles GET /api/identity
func (sc *StateController) GetIdentity(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"user_id":     sc.store.UserID(ctx),
		"storage_key": sc.store.Key(ctx),
	})
}

// GetAchievements handles GET /api/achievements
func (sc *StateController) GetAchievements(c *gin.Context) {
	list := sc.achievements.List()
	earned := 0
	for _, a := range list {
		if a.Earned {
			earned++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"achievements": list,
		"earned":       earned,
		"total":        len(list),
	})
}

// GetStreak handles GET /api/streak
func (sc *StateController) GetStreak(c *gin.Context) {
	c.JSON(http.StatusOK, sc.streak.Current())
}

// GetNotifications handles GET /api/notifications. Returned messages are removed.
func (sc *StateController) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": sc.notifications.Drain()})
}

// GetActivity handles GET /api/activity
func (sc *StateController) GetActivity(c *gin.Context) {
	if sc.audit == nil {
		respondError(c, http.StatusServiceUnavailable, "activity_unavailable", "activity log is not configured")
		return
	}

	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 25)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}
	offset := (page - 1) * limit

	ctx := c.Request.Context()
	eventType := entities.AuditEventType(c.Query("type"))
	events, total, err := sc.audit.GetEvents(ctx, sc.store.UserID(ctx), eventType, limit, offset)
	if err != nil {
		respondInternalError(c, err, "get activity")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}
