// Package identity assigns the anonymous user identifier that namespaces the stored reading state.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/id"
	"github.com/mrlokans/readworld/internal/storage"
)

// FallbackID is used when no identifier can be read or persisted.
const FallbackID = "user_local"

// Provider reads or creates the identifier stored under entities.RecordKeyUserID.
type Provider struct {
	backend storage.Backend
	now     func() time.Time

	mu     sync.Mutex
	cached string
}

func NewProvider(backend storage.Backend) *Provider {
	return &Provider{backend: backend, now: time.Now}
}

// GetOrCreate returns the persisted identifier, generating and storing one on first use.
// Storage failures are logged and degrade to FallbackID; they never abort the caller.
func (p *Provider) GetOrCreate(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached
	}

	existing, err := p.backend.Get(ctx, entities.RecordKeyUserID)
	if err == nil && existing != "" {
		p.cached = existing
		return existing
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("Identity: failed to read user id, using %s: %v", FallbackID, err)
		return FallbackID
	}

	generated, err := p.generate()
	if err != nil {
		log.Printf("Identity: failed to generate user id, using %s: %v", FallbackID, err)
		return FallbackID
	}

	if err := p.backend.Set(ctx, entities.RecordKeyUserID, generated); err != nil {
		// The value is still usable for this process; the fallback backend keeps it in memory.
		log.Printf("Identity: failed to persist user id %s: %v", generated, err)
	}

	log.Printf("Identity: created user id %s", generated)
	p.cached = generated
	return generated
}

func (p *Provider) generate() (string, error) {
	suffix, err := id.Suffix(9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("user_%d_%s", p.now().UnixMilli(), suffix), nil
}
