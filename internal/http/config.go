package http

import (
	"github.com/mrlokans/readworld/internal/account"
	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/annotations"
	"github.com/mrlokans/readworld/internal/audit"
	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/covers"
	"github.com/mrlokans/readworld/internal/database"
	"github.com/mrlokans/readworld/internal/library"
	"github.com/mrlokans/readworld/internal/notify"
	"github.com/mrlokans/readworld/internal/reader"
	"github.com/mrlokans/readworld/internal/settingsstore"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/streak"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional parts (Covers, Database, Account, Audit, TaskQueue, Scheduler) may be nil;
// their routes are then omitted or report the service as unavailable.
type RouterConfig struct {
	// Reading state
	Store        *state.Store
	Catalog      *catalog.Catalog
	Library      *library.Library
	Annotations  *annotations.Manager
	Achievements *achievements.Engine
	Streak       *streak.Tracker
	Reader       *reader.Session
	Settings     *settingsstore.SettingsStore

	// Optional local cover image cache
	Covers *covers.Cache

	// User-facing messages
	Notifications *notify.Feed

	// Remote account
	Account *account.Service

	// Persistence and activity log
	Storage  DegradedReporter
	Database *database.Database
	Audit    *audit.Service

	// Background work
	TaskQueue TaskQueue
	Scheduler Rescheduler

	// Application info
	Version string
}
