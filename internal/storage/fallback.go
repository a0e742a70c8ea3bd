package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Fallback writes through to a persistent backend and mirrors every value in memory.
// When the persistent backend fails, reads are served from the mirror and writes
// land only in memory until the backend recovers. Write failures are still returned,
// wrapped in ErrUnavailable, so callers can report them.
type Fallback struct {
	primary Backend
	memory  *Memory

	mu       sync.Mutex
	degraded bool
}

// NewFallback wraps primary. A nil primary runs in memory-only mode from the start.
func NewFallback(primary Backend) *Fallback {
	f := &Fallback{primary: primary, memory: NewMemory()}
	if primary == nil {
		f.degraded = true
		log.Printf("WARNING: storage: no persistent backend configured, state will not survive restarts")
	}
	return f
}

func (f *Fallback) Get(ctx context.Context, key string) (string, error) {
	if f.primary == nil {
		return f.memory.Get(ctx, key)
	}

	value, err := f.primary.Get(ctx, key)
	switch {
	case err == nil:
		f.recovered()
		_ = f.memory.Set(ctx, key, value)
		return value, nil
	case errors.Is(err, ErrNotFound):
		f.recovered()
		// A value written while degraded may exist only in memory.
		return f.memory.Get(ctx, key)
	default:
		f.markDegraded(err)
		if value, memErr := f.memory.Get(ctx, key); memErr == nil {
			return value, nil
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func (f *Fallback) Set(ctx context.Context, key, value string) error {
	_ = f.memory.Set(ctx, key, value)
	if f.primary == nil {
		return nil
	}

	if err := f.primary.Set(ctx, key, value); err != nil {
		f.markDegraded(err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	f.recovered()
	return nil
}

func (f *Fallback) Delete(ctx context.Context, key string) error {
	_ = f.memory.Delete(ctx, key)
	if f.primary == nil {
		return nil
	}

	if err := f.primary.Delete(ctx, key); err != nil {
		f.markDegraded(err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Degraded reports whether the last persistent operation failed.
func (f *Fallback) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}

func (f *Fallback) markDegraded(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.degraded {
		log.Printf("WARNING: storage: persistent backend failed, continuing in memory: %v", err)
	}
	f.degraded = true
}

func (f *Fallback) recovered() {
	if f.primary == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.degraded {
		log.Printf("storage: persistent backend recovered")
	}
	f.degraded = false
}
