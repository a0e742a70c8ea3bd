// Package database provides the SQLite data access layer.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── records/         # Key/value records (the default storage.Backend)
//	└── audit/           # Activity log
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./readworld.db")
//
//	recordsRepo := records.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	value, err := recordsRepo.Get(ctx, "readworld_user_id")
package database
