package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Catalog
		Library
		Account
		Scheduler
		Tasks
		Audit
		Export
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		Timezone                 string // IANA name used for reading days and the daily quote; "Local" by default
	}
	Database struct {
		Path string
	}
	Storage struct {
		Backend   StorageBackend // sqlite, badger or memory
		BadgerDir string
	}
	Catalog struct {
		Path string // TOML catalog; empty uses the built-in one
	}
	Library struct {
		BooksDir string
	}
	Account struct {
		APIURL  string // empty disables account features
		Timeout time.Duration
		// TokenKey is a base64 AES-256 key; when set the session token is
		// stored encrypted.
		TokenKey string
	}
	Scheduler struct {
		Enabled bool
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Audit struct {
		RetentionDays int
	}
	Export struct {
		Subdir string
	}
)

func NewConfig() *Config {
	return load(viper.New())
}

func load(v *viper.Viper) *Config {
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("timezone", "Local")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("storage_backend", string(StorageSQLite))
	v.SetDefault("badger_dir", DefaultBadgerDir)
	v.SetDefault("catalog_path", "")
	v.SetDefault("books_dir", DefaultBooksDir)
	v.SetDefault("account_api_url", "")
	v.SetDefault("account_timeout", "10s")
	v.SetDefault("account_token_key", "")
	v.SetDefault("scheduler_enabled", true)
	v.SetDefault("audit_retention_days", 90)
	v.SetDefault("export_subdir", "readworld")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Timezone:                 v.GetString("TIMEZONE"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			Backend:   StorageBackend(v.GetString("STORAGE_BACKEND")),
			BadgerDir: v.GetString("BADGER_DIR"),
		},
		Catalog: Catalog{
			Path: v.GetString("CATALOG_PATH"),
		},
		Library: Library{
			BooksDir: v.GetString("BOOKS_DIR"),
		},
		Account: Account{
			APIURL:   v.GetString("ACCOUNT_API_URL"),
			Timeout:  v.GetDuration("ACCOUNT_TIMEOUT"),
			TokenKey: v.GetString("ACCOUNT_TOKEN_KEY"),
		},
		Scheduler: Scheduler{
			Enabled: v.GetBool("SCHEDULER_ENABLED"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Export: Export{
			Subdir: v.GetString("EXPORT_SUBDIR"),
		},
	}
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageSQLite, StorageBadger, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Tasks.Enabled && c.Tasks.Workers < 1 {
		return fmt.Errorf("task workers must be at least 1, got %d", c.Tasks.Workers)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Global.Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Global.Timezone == "" || c.Global.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Global.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Global.Timezone, err)
	}
	return loc, nil
}

// AuditRetention is the activity log retention as a duration.
func (c *Config) AuditRetention() time.Duration {
	return time.Duration(c.Audit.RetentionDays) * 24 * time.Hour
}
