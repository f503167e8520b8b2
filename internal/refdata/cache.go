// Package refdata memoizes the pet-kind reference data for the lifetime of
// a session. Kinds never change server-side while the app runs, so they are
// fetched at most once and shared by the table, the pet form and the delete
// confirmation.
package refdata

import (
	"context"
	"sync"

	"github.com/HristoTrendafilov/pet-store/internal/api"
)

// KindLister is the slice of the API client the cache needs.
type KindLister interface {
	ListPetKinds(ctx context.Context) ([]api.PetKind, error)
}

// Cache holds the kind list and the derived value→displayName map. Both are
// published together: a consumer can never observe one without the other.
type Cache struct {
	mu    sync.Mutex
	kinds []api.PetKind
	names map[int]string
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// EnsureLoaded fetches the kinds on first use. A warm cache returns
// immediately without touching the network. On failure the cache stays
// empty, so the next call retries.
//
// The mutex is held across the fetch: two racing cold callers still issue
// exactly one request.
func (c *Cache) EnsureLoaded(ctx context.Context, client KindLister) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.names != nil {
		return nil
	}
	kinds, err := client.ListPetKinds(ctx)
	if err != nil {
		return err
	}
	names := make(map[int]string, len(kinds))
	for _, kind := range kinds {
		// Built in list order; a duplicate value keeps the last entry.
		names[kind.Value] = kind.DisplayName
	}
	c.kinds = kinds
	c.names = names
	return nil
}

// Loaded reports whether the reference data has been published.
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.names != nil
}

// Kinds returns the raw list in server order.
func (c *Cache) Kinds() []api.PetKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.PetKind, len(c.kinds))
	copy(out, c.kinds)
	return out
}

// DisplayName resolves a kind id to its label.
func (c *Cache) DisplayName(value int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.names[value]
	return name, ok
}

// Invalidate clears the cache wholesale so the next EnsureLoaded refetches.
// The map is never partially updated.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kinds = nil
	c.names = nil
}
