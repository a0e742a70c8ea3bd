package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/readworld/internal/account"
	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/audit"
	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/database/records"
	"github.com/mrlokans/readworld/internal/documents"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/exporters"
	"github.com/mrlokans/readworld/internal/http"
	"github.com/mrlokans/readworld/internal/identity"
	"github.com/mrlokans/readworld/internal/notify"
	"github.com/mrlokans/readworld/internal/reader"
	"github.com/mrlokans/readworld/internal/scheduler"
	"github.com/mrlokans/readworld/internal/settingsstore"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/storage"
	"github.com/mrlokans/readworld/internal/storage/providers/badgerstore"
	"github.com/mrlokans/readworld/internal/tasks"
)

// =============================================================================
// Storage
// =============================================================================

var _ storage.Backend = (*records.Repository)(nil)
var _ storage.Backend = (*badgerstore.Client)(nil)
var _ storage.Backend = (*storage.Memory)(nil)
var _ storage.Backend = (*storage.Fallback)(nil)

var _ state.IdentitySource = (*identity.Provider)(nil)

// =============================================================================
// Activity Log
// =============================================================================

var _ state.ResetRecorder = (*audit.Service)(nil)
var _ achievements.UnlockRecorder = (*audit.Service)(nil)
var _ settingsstore.SettingsRecorder = (*audit.Service)(nil)
var _ account.AccountRecorder = (*audit.Service)(nil)
var _ tasks.ExportRecorder = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Reading
// =============================================================================

var _ reader.PaginatedService = (*documents.PDF)(nil)
var _ reader.LocationService = (*documents.EPUB)(nil)
var _ catalog.View = (*entities.UserState)(nil)
var _ exporters.AnnotationExporter = (*exporters.MarkdownExporter)(nil)

var _ notify.Notifier = (*notify.Feed)(nil)
var _ notify.Notifier = notify.Log{}
var _ notify.Notifier = notify.Discard{}

// =============================================================================
// External Services
// =============================================================================

var _ account.API = (*account.Client)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.Rescheduler = (*scheduler.RolloverScheduler)(nil)
var _ scheduler.Roller = (*state.Store)(nil)
var _ scheduler.ScheduleSource = (*settingsstore.SettingsStore)(nil)
var _ tasks.ExportDirSource = (*settingsstore.SettingsStore)(nil)
