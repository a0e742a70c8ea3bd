// Package interfaces documents the core abstractions used throughout the application.
//
// Interfaces are declared next to their consumer; this package only holds the
// compile-time checks that wire concrete types to them.
//
// # Interface Categories
//
// ## Storage
//
//   - Backend: string key/value persistence (internal/storage/storage.go).
//     Implemented by records.Repository (SQLite), badgerstore.Client,
//     storage.Memory and storage.Fallback.
//   - IdentitySource: the stable anonymous user id (internal/state/store.go)
//
// ## Activity Log Recorders
//
// Each domain package declares the narrow recorder it needs, and audit.Service
// implements all of them:
//
//   - ResetRecorder (internal/state/store.go)
//   - UnlockRecorder (internal/achievements/achievements.go)
//   - SettingsRecorder (internal/settingsstore/settingsstore.go)
//   - AccountRecorder (internal/account/service.go)
//   - ExportRecorder (internal/tasks/export_annotations.go)
//
// ## Document Rendering
//
//   - PaginatedService: page-addressed documents (internal/reader/services.go)
//   - LocationService: reflowable documents with opaque positions (internal/reader/services.go)
//
// ## Background Work
//
//   - TaskQueue: enqueue exports and poll task status (internal/http/tasks.go)
//   - Rescheduler: apply a changed rollover schedule (internal/http/settings.go)
//   - Roller, ScheduleSource, Enqueuer (internal/scheduler/rollover.go)
//
// # Adding a New Storage Backend
//
//  1. Create a provider in internal/storage/providers/:
//
//     type Client struct { ... }
//
//     func (c *Client) Get(ctx context.Context, key string) (string, error)
//     func (c *Client) Set(ctx context.Context, key, value string) error
//     func (c *Client) Delete(ctx context.Context, key string) error
//
//     Get must return storage.ErrNotFound for a missing key.
//
//  2. Add a StorageBackend constant in internal/config and a case in
//     entrypoint.App.openBackend. The result is wrapped in storage.Fallback.
//
//  3. Add a compile-time check to checks.go:
//
//     var _ storage.Backend = (*Client)(nil)
//
// # Adding a New Document Format
//
//  1. Implement PaginatedService or LocationService in internal/documents/
//     reading from an fs.FS.
//
//  2. Pass it to reader.NewSession in entrypoint.Build.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
