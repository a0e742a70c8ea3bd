package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/mrlokans/readworld/internal/account"
	"github.com/mrlokans/readworld/internal/achievements"
	"github.com/mrlokans/readworld/internal/annotations"
	"github.com/mrlokans/readworld/internal/audit"
	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/config"
	"github.com/mrlokans/readworld/internal/covers"
	"github.com/mrlokans/readworld/internal/crypto"
	"github.com/mrlokans/readworld/internal/database"
	auditrepo "github.com/mrlokans/readworld/internal/database/audit"
	"github.com/mrlokans/readworld/internal/database/records"
	"github.com/mrlokans/readworld/internal/documents"
	"github.com/mrlokans/readworld/internal/identity"
	"github.com/mrlokans/readworld/internal/library"
	"github.com/mrlokans/readworld/internal/notify"
	"github.com/mrlokans/readworld/internal/reader"
	"github.com/mrlokans/readworld/internal/scheduler"
	"github.com/mrlokans/readworld/internal/settingsstore"
	"github.com/mrlokans/readworld/internal/state"
	"github.com/mrlokans/readworld/internal/storage"
	"github.com/mrlokans/readworld/internal/storage/providers/badgerstore"
	"github.com/mrlokans/readworld/internal/streak"
	"github.com/mrlokans/readworld/internal/tasks"
)

// App holds every wired component. Serve and the CLI commands share it.
type App struct {
	Config *config.Config

	Database      *database.Database
	Records       *storage.Fallback
	Notifications *notify.Feed
	Store         *state.Store
	Catalog       *catalog.Catalog
	Covers        *covers.Cache
	Audit         *audit.Service
	Achievements  *achievements.Engine
	Streak        *streak.Tracker
	Library       *library.Library
	Annotations   *annotations.Manager
	Settings      *settingsstore.SettingsStore
	Reader        *reader.Session
	Account       *account.Service

	// Tasks and Scheduler are nil when disabled.
	Tasks     *tasks.Client
	Scheduler *scheduler.RolloverScheduler

	closers []io.Closer
}

// Build opens storage and wires the components described by cfg.
// withTasks controls whether the background queue is opened.
func Build(cfg *config.Config, withTasks bool) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	loc, _ := cfg.Location()

	app := &App{Config: cfg}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	app.Database = db
	app.closers = append(app.closers, db)

	primary, err := app.openBackend()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Records = storage.NewFallback(primary)

	app.Catalog = catalog.Default()
	if cfg.Catalog.Path != "" {
		if app.Catalog, err = catalog.LoadFile(cfg.Catalog.Path); err != nil {
			app.Close()
			return nil, err
		}
	}
	log.Printf("Catalog: %d books", app.Catalog.Len())

	coverCacheDir := filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	if app.Covers, err = covers.NewCache(coverCacheDir); err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
	}

	app.Notifications = notify.NewFeed(notify.DefaultCapacity)
	app.Audit = audit.NewService(auditrepo.NewRepository(db.DB))

	app.Store = state.NewStore(app.Records, identity.NewProvider(app.Records), app.Notifications)
	app.Store.SetResetRecorder(app.Audit)

	app.Achievements = achievements.NewEngine(app.Store, app.Notifications)
	app.Achievements.SetRecorder(app.Audit)
	app.Streak = streak.NewTracker(app.Store, app.Achievements, loc)
	app.Library = library.New(app.Store, app.Catalog, app.Achievements)
	app.Annotations = annotations.NewManager(app.Store)

	app.Settings = settingsstore.New(app.Records, app.Store)
	app.Settings.SetRecorder(app.Audit)
	app.Settings.SetLocation(loc)

	books := os.DirFS(cfg.Library.BooksDir)
	app.Reader = reader.NewSession(app.Store, app.Catalog, app.Achievements, app.Streak, app.Notifications, reader.Renderers{
		Paginated: documents.NewPDF(books),
		Location:  documents.NewEPUB(books),
	})

	var api account.API
	if cfg.Account.APIURL != "" {
		api = account.NewClient(cfg.Account.APIURL, cfg.Account.Timeout)
	} else {
		log.Printf("Account: ACCOUNT_API_URL is not set, account features are disabled")
	}
	app.Account = account.NewService(api, app.Records, app.Store, app.Achievements, app.Notifications)
	app.Account.SetRecorder(app.Audit)
	if cfg.Account.TokenKey != "" {
		sealer, err := crypto.ParseKey(cfg.Account.TokenKey)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("invalid ACCOUNT_TOKEN_KEY: %w", err)
		}
		app.Account.SetTokenSealer(sealer)
	}

	if withTasks && cfg.Tasks.Enabled {
		if err := app.openTasks(); err != nil {
			app.Close()
			return nil, err
		}
	}

	if cfg.Scheduler.Enabled {
		var queue scheduler.Enqueuer
		if app.Tasks != nil {
			queue = app.Tasks
		}
		app.Scheduler = scheduler.NewRolloverScheduler(app.Store, app.Settings, queue, cfg.AuditRetention())
	}

	ctx := context.Background()
	app.Store.Load(ctx)
	// A restored state may already satisfy achievements earned in an earlier session.
	if unlocked, err := app.Achievements.CheckAll(ctx); err != nil {
		log.Printf("Achievements: startup check failed: %v", err)
	} else if len(unlocked) > 0 {
		log.Printf("Achievements: unlocked at startup: %v", unlocked)
	}
	return app, nil
}

func (app *App) openBackend() (storage.Backend, error) {
	cfg := app.Config
	switch cfg.Storage.Backend {
	case config.StorageBadger:
		client, err := badgerstore.Open(cfg.Storage.BadgerDir)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client)
		log.Printf("Storage: badger at %s", cfg.Storage.BadgerDir)
		return client, nil
	case config.StorageMemory:
		log.Printf("Storage: in-memory, nothing will be kept after exit")
		return storage.NewMemory(), nil
	default:
		log.Printf("Storage: sqlite records in %s", cfg.Database.Path)
		return records.NewRepository(app.Database.DB), nil
	}
}

func (app *App) openTasks() error {
	cfg := app.Config
	taskCfg := tasks.DefaultConfig()
	taskCfg.Workers = cfg.Tasks.Workers
	taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
	taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval
	taskCfg.AuditRetention = cfg.AuditRetention()

	client, err := tasks.NewClient(tasks.DBPathFor(cfg.Database.Path), taskCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize task queue: %w", err)
	}
	client.Register(
		tasks.NewExportAnnotationsQueue(app.ExportDeps()),
		tasks.NewCleanupAuditEventsQueue(app.Audit),
	)
	app.Tasks = client
	app.closers = append(app.closers, client)
	return nil
}

// ExportDeps is what an annotation export needs, queued or run inline.
func (app *App) ExportDeps() tasks.ExportDeps {
	return tasks.ExportDeps{
		Store:    app.Store,
		Catalog:  app.Catalog,
		Dirs:     app.Settings,
		Recorder: app.Audit,
		Subdir:   app.Config.Export.Subdir,
	}
}

// Close waits for pending activity entries and closes storage in reverse order of opening.
func (app *App) Close() error {
	if app.Audit != nil {
		app.Audit.Wait()
	}
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
