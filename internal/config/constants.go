package config

// Default paths and values
const (
	// DefaultDatabasePath is the SQLite file holding state records and the activity log
	DefaultDatabasePath = "./readworld.db"

	// DefaultBadgerDir is used when STORAGE_BACKEND=badger
	DefaultBadgerDir = "./readworld-badger"

	// DefaultBooksDir is where catalog file references such as "books/astro.pdf" resolve
	DefaultBooksDir = "./library"
)

type StorageBackend string

const (
	StorageSQLite StorageBackend = "sqlite"
	StorageBadger StorageBackend = "badger"
	StorageMemory StorageBackend = "memory"
)
