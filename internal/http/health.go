package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readworld/internal/database"
	"github.com/mrlokans/readworld/internal/state"
)

const (
	healthy   = "healthy"
	degraded  = "degraded"
	unhealthy = "unhealthy"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// DegradedReporter is implemented by storage.Fallback.
type DegradedReporter interface {
	Degraded() bool
}

// NextRunReporter is implemented by the rollover scheduler.
type NextRunReporter interface {
	NextRunTime() *time.Time
}

type HealthController struct {
	db        *database.Database
	store     *state.Store
	storage   DegradedReporter
	scheduler NextRunReporter
	version   string
}

func NewHealthController(cfg RouterConfig) *HealthController {
	h := &HealthController{
		db:      cfg.Database,
		store:   cfg.Store,
		storage: cfg.Storage,
		version: cfg.Version,
	}
	if nr, ok := cfg.Scheduler.(NextRunReporter); ok {
		h.scheduler = nr
	}
	return h
}

// check reports one component: a detail for the response and the overall
// status it implies.
type check func(ctx context.Context) (detail, status string)

func (h *HealthController) checks() map[string]check {
	return map[string]check{
		"database":  h.checkDatabase,
		"storage":   h.checkStorage,
		"state":     h.checkState,
		"scheduler": h.checkScheduler,
	}
}

func (h *HealthController) checkDatabase(ctx context.Context) (string, string) {
	if h.db == nil {
		return "not configured", healthy
	}
	sqlDB, err := h.db.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return "error: " + err.Error(), unhealthy
	}
	return "ok", healthy
}

// A degraded store keeps working from memory, so it does not fail the probe.
func (h *HealthController) checkStorage(context.Context) (string, string) {
	switch {
	case h.storage == nil:
		return "not configured", healthy
	case h.storage.Degraded():
		return "memory only: changes will not survive a restart", degraded
	default:
		return "ok", healthy
	}
}

func (h *HealthController) checkState(ctx context.Context) (string, string) {
	if h.store == nil {
		return "not configured", healthy
	}
	return h.store.Key(ctx), healthy
}

func (h *HealthController) checkScheduler(context.Context) (string, string) {
	if h.scheduler == nil {
		return "not running", healthy
	}
	next := h.scheduler.NextRunTime()
	if next == nil {
		return "not running", healthy
	}
	return "next rollover " + next.Format(time.RFC3339), healthy
}

func (h *HealthController) Status(c *gin.Context) {
	ctx := c.Request.Context()
	health := HealthResponse{
		Status:  healthy,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string),
	}

	for name, run := range h.checks() {
		detail, status := run(ctx)
		health.Checks[name] = detail
		switch {
		case status == unhealthy:
			health.Status = unhealthy
		case status == degraded && health.Status == healthy:
			health.Status = degraded
		}
	}

	statusCode := http.StatusOK
	if health.Status == unhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
