package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates the JSON API router. Controllers whose dependencies are
// missing from cfg are not registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	stateController := NewStateController(cfg.Store, cfg.Achievements, cfg.Streak, cfg.Notifications, cfg.Audit)
	api.GET("/state", stateController.GetState)
	api.GET("/identity", stateController.GetIdentity)
	api.GET("/achievements", stateController.GetAchievements)
	api.GET("/streak", stateController.GetStreak)
	api.GET("/notifications", stateController.GetNotifications)
	api.GET("/activity", stateController.GetActivity)

	books := NewBooksController(cfg.Catalog, cfg.Store, cfg.Library)
	api.GET("/books", books.GetBooks)
	api.GET("/books/:id", books.GetBook)
	api.GET("/books/:id/recommendations", books.GetRecommendations)
	api.GET("/genres", books.GetGenres)
	api.GET("/favorites", books.GetFavorites)
	api.GET("/recent", books.GetRecent)
	api.GET("/stats", books.GetStats)
	api.POST("/books/:id/favorite", books.ToggleFavorite)
	api.POST("/books/:id/download", books.Download)
	api.PUT("/books/:id/review", books.SaveReview)
	api.DELETE("/books/:id/review", books.DeleteReview)
	api.PUT("/books/:id/rating", books.SetRating)
	api.POST("/data/clear", books.ClearData)

	if cfg.Covers != nil {
		api.GET("/books/:id/cover", NewCoversController(cfg.Catalog, cfg.Covers).GetCover)
	}

	annotationsController := NewAnnotationsController(cfg.Annotations, cfg.Catalog)
	api.GET("/books/:id/annotations", annotationsController.GetAnnotations)
	api.POST("/books/:id/bookmarks/toggle", annotationsController.ToggleBookmark)
	api.PUT("/books/:id/bookmarks/:page", annotationsController.PutBookmark)
	api.DELETE("/books/:id/bookmarks/:page", annotationsController.DeleteBookmark)
	api.POST("/books/:id/highlights", annotationsController.AddHighlight)
	api.DELETE("/books/:id/highlights/:annotationId", annotationsController.DeleteHighlight)
	api.POST("/books/:id/notes", annotationsController.AddNote)
	api.PUT("/books/:id/notes/quick", annotationsController.SaveQuickNote)
	api.PATCH("/books/:id/notes/:annotationId", annotationsController.UpdateNote)
	api.DELETE("/books/:id/notes/:annotationId", annotationsController.DeleteNote)

	if cfg.Reader != nil {
		readerController := NewReaderController(cfg.Reader)
		api.GET("/reader", readerController.GetStatus)
		api.POST("/reader/open", readerController.Open)
		api.POST("/reader/page", readerController.ChangePage)
		api.POST("/reader/relocated", readerController.Relocated)
		api.POST("/reader/save", readerController.Save)
		api.POST("/reader/finish", readerController.Finish)
		api.POST("/reader/close", readerController.Close)
	}

	settings := NewSettingsController(cfg.Settings, cfg.Scheduler)
	api.GET("/settings/accessibility", settings.GetAccessibility)
	api.PATCH("/settings/accessibility", settings.UpdateAccessibility)
	api.POST("/settings/font", settings.AdjustFontSize)
	api.POST("/settings/zoom", settings.AdjustZoom)
	api.GET("/settings/preferences", settings.GetPreferences)
	api.PATCH("/settings/preferences", settings.UpdatePreferences)
	api.GET("/settings/export-dir", settings.GetExportDir)
	api.PUT("/settings/export-dir", settings.SetExportDir)
	api.DELETE("/settings/export-dir", settings.ClearExportDir)
	api.GET("/settings/rollover-schedule", settings.GetRolloverSchedule)
	api.PUT("/settings/rollover-schedule", settings.SetRolloverSchedule)
	api.DELETE("/settings/rollover-schedule", settings.ClearRolloverSchedule)
	api.GET("/quote", settings.GetQuote)

	if cfg.Account != nil {
		accountController := NewAccountController(cfg.Account, cfg.Store)
		api.GET("/account", accountController.GetAccount)
		api.POST("/account/register", accountController.Register)
		api.POST("/account/login", accountController.Login)
		api.POST("/account/logout", accountController.Logout)
		api.POST("/account/upgrade", accountController.Upgrade)
		api.POST("/account/downgrade", accountController.Downgrade)
	}

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.Store, cfg.Catalog)
		api.POST("/export/annotations", tasksController.ExportAnnotations)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
