package http

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readworld/internal/settingsstore"
)

// Rescheduler restarts the rollover job after its schedule changed.
type Rescheduler interface {
	Reschedule(ctx context.Context) error
}

type SettingsController struct {
	settings  *settingsstore.SettingsStore
	scheduler Rescheduler
}

func NewSettingsController(settings *settingsstore.SettingsStore, scheduler Rescheduler) *SettingsController {
	return &SettingsController{settings: settings, scheduler: scheduler}
}

// GetAccessibility handles GET /api/settings/accessibility
func (sc *SettingsController) GetAccessibility(c *gin.Context) {
	c.JSON(http.StatusOK, sc.settings.Accessibility())
}

// UpdateAccessibility handles PATCH /api/settings/accessibility
func (sc *SettingsController) UpdateAccessibility(c *gin.Context) {
	var patch settingsstore.AccessibilityPatch
	if !bindJSON(c, &patch) {
		return
	}
	a, err := sc.settings.UpdateAccessibility(c.Request.Context(), patch)
	if err != nil {
		respondDomainError(c, err, "update accessibility")
		return
	}
	c.JSON(http.StatusOK, a)
}

type stepRequest struct {
	Direction string `json:"direction" binding:"required,oneof=in out reset"`
}

// AdjustFontSize handles POST /api/settings/font {"direction": "in"|"out"|"reset"}
func (sc *SettingsController) AdjustFontSize(c *gin.Context) {
	var req stepRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	var (
		size int
		err  error
	)
	switch req.Direction {
	case "in":
		size, err = sc.settings.AdjustFontSize(ctx, settingsstore.FontSizeStep)
	case "out":
		size, err = sc.settings.AdjustFontSize(ctx, -settingsstore.FontSizeStep)
	default:
		size, err = sc.settings.ResetFontSize(ctx)
	}
	if err != nil {
		respondDomainError(c, err, "adjust font size")
		return
	}
	c.JSON(http.StatusOK, gin.H{"fontSize": size})
}

// AdjustZoom handles POST /api/settings/zoom {"direction": "in"|"out"|"reset"}
func (sc *SettingsController) AdjustZoom(c *gin.Context) {
	var req stepRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	var (
		zoom float64
		err  error
	)
	switch req.Direction {
	case "in":
		zoom, err = sc.settings.AdjustZoom(ctx, settingsstore.ZoomStep)
	case "out":
		zoom, err = sc.settings.AdjustZoom(ctx, -settingsstore.ZoomStep)
	default:
		zoom, err = sc.settings.ResetZoom(ctx)
	}
	if err != nil {
		respondDomainError(c, err, "adjust zoom")
		return
	}
	c.JSON(http.StatusOK, gin.H{"zoom": zoom})
}

// GetPreferences handles GET /api/settings/preferences
func (sc *SettingsController) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, sc.settings.Preferences())
}

// UpdatePreferences handles PATCH /api/settings/preferences
func (sc *SettingsController) UpdatePreferences(c *gin.Context) {
	var patch settingsstore.PreferencesPatch
	if !bindJSON(c, &patch) {
		return
	}
	p, err := sc.settings.UpdatePreferences(c.Request.Context(), patch)
	if err != nil {
		respondDomainError(c, err, "update preferences")
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetQuote handles GET /api/quote. 204 means no quote is due today.
func (sc *SettingsController) GetQuote(c *gin.Context) {
	q, ok := sc.settings.DailyQuote(c.Request.Context())
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, q)
}

// GetExportDir handles GET /api/settings/export-dir
func (sc *SettingsController) GetExportDir(c *gin.Context) {
	c.JSON(http.StatusOK, sc.settings.ExportDirInfo(c.Request.Context()))
}

type exportDirRequest struct {
	Path string `json:"path" binding:"required"`
}

// SetExportDir handles PUT /api/settings/export-dir
func (sc *SettingsController) SetExportDir(c *gin.Context) {
	var req exportDirRequest
	if !bindJSON(c, &req) {
		return
	}

	path := filepath.Clean(strings.TrimSpace(req.Path))
	if !filepath.IsAbs(path) {
		respondBadRequest(c, "export directory must be an absolute path")
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		respondBadRequest(c, "export directory does not exist")
		return
	}

	ctx := c.Request.Context()
	if err := sc.settings.SetExportDir(ctx, path); err != nil {
		respondInternalError(c, err, "set export dir")
		return
	}
	c.JSON(http.StatusOK, sc.settings.ExportDirInfo(ctx))
}

// ClearExportDir handles DELETE /api/settings/export-dir
func (sc *SettingsController) ClearExportDir(c *gin.Context) {
	ctx := c.Request.Context()
	if err := sc.settings.ClearExportDir(ctx); err != nil {
		respondInternalError(c, err, "clear export dir")
		return
	}
	c.JSON(http.StatusOK, sc.settings.ExportDirInfo(ctx))
}

type scheduleResponse struct {
	settingsstore.SettingInfo
	Description string `json:"description"`
}

func (sc *SettingsController) scheduleInfo(ctx context.Context) scheduleResponse {
	info := sc.settings.RolloverScheduleInfo(ctx)
	return scheduleResponse{SettingInfo: info, Description: settingsstore.DescribeSchedule(info.Value)}
}

// GetRolloverSchedule handles GET /api/settings/rollover-schedule
func (sc *SettingsController) GetRolloverSchedule(c *gin.Context) {
	c.JSON(http.StatusOK, sc.scheduleInfo(c.Request.Context()))
}

type scheduleRequest struct {
	Schedule string `json:"schedule" binding:"required"`
}

// SetRolloverSchedule handles PUT /api/settings/rollover-schedule
func (sc *SettingsController) SetRolloverSchedule(c *gin.Context) {
	var req scheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if err := sc.settings.SetRolloverSchedule(ctx, strings.TrimSpace(req.Schedule)); err != nil {
		respondBadRequest(c, "invalid cron schedule: "+err.Error())
		return
	}
	sc.reschedule()
	c.JSON(http.StatusOK, sc.scheduleInfo(ctx))
}

// ClearRolloverSchedule handles DELETE /api/settings/rollover-schedule
func (sc *SettingsController) ClearRolloverSchedule(c *gin.Context) {
	ctx := c.Request.Context()
	if err := sc.settings.ClearRolloverSchedule(ctx); err != nil {
		respondInternalError(c, err, "clear rollover schedule")
		return
	}
	sc.reschedule()
	c.JSON(http.StatusOK, sc.scheduleInfo(ctx))
}

// reschedule runs detached from the request; the scheduler outlives it.
func (sc *SettingsController) reschedule() {
	if sc.scheduler == nil {
		return
	}
	if err := sc.scheduler.Reschedule(context.Background()); err != nil {
		log.Printf("Settings: failed to reschedule rollover: %v", err)
	}
}
