// Package storage defines the key/value persistence the reading state is kept in.
//
// A Backend plays the part browser local storage plays for the web client: string
// keys, string values, best-effort writes. Implementations:
//
//	database/records.Repository   SQLite through gorm (default)
//	providers/badgerstore.Client  embedded Badger directory
//	Memory                        process memory only
//
// Fallback wraps a persistent backend and degrades to memory when it fails, so the
// application keeps working with storage gone.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// ErrUnavailable indicates the persistent backend could not be read or written.
var ErrUnavailable = errors.New("storage: persistent storage unavailable")

// Backend is a string key/value store.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
