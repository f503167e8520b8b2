// Package petlist orchestrates the two fetches behind the pet table: the
// pet summaries and, on a cold cache, the kind reference data. Both legs are
// started together and joined; the table never renders from a partial
// result because it cannot resolve kind names without the map.
package petlist

import (
	"context"
	"sort"
	"sync"

	"github.com/HristoTrendafilov/pet-store/internal/api"
	"github.com/HristoTrendafilov/pet-store/internal/refdata"
)

// Status is the loader's three-state lifecycle (idle and loading are
// distinct here so the view can tell "never fetched" from "fetching").
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend is the slice of the API client the loader needs.
type Backend interface {
	ListPets(ctx context.Context) ([]api.PetListItem, error)
	ListPetKinds(ctx context.Context) ([]api.PetKind, error)
}

// Snapshot is the published state the view renders from.
type Snapshot struct {
	Status  Status
	Items   []api.PetListItem
	ErrText string
}

// Loader owns the refresh choreography and the published table state.
type Loader struct {
	backend Backend
	cache   *refdata.Cache

	mu         sync.Mutex
	status     Status
	items      []api.PetListItem
	errText    string
	generation uint64
}

// New builds a loader around the given backend and shared kind cache.
func New(backend Backend, cache *refdata.Cache) *Loader {
	return &Loader{backend: backend, cache: cache}
}

// Refresh clears the published items, runs the pets fetch and the kinds
// fetch concurrently, and publishes the joined outcome: items sorted by
// PetID descending (newest first) on success, or a failed status with the
// fixed user-facing message if either leg fails.
//
// Overlapping calls are allowed. Each call takes a generation token; only
// the most recently started refresh publishes its outcome, so a slow stale
// response can never overwrite a newer one.
func (l *Loader) Refresh(ctx context.Context) Snapshot {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.status = StatusLoading
	l.items = nil
	l.errText = ""
	l.mu.Unlock()

	var (
		wg       sync.WaitGroup
		pets     []api.PetListItem
		petsErr  error
		kindsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pets, petsErr = l.backend.ListPets(ctx)
	}()
	go func() {
		defer wg.Done()
		// A warm cache returns without issuing a request.
		kindsErr = l.cache.EnsureLoaded(ctx, l.backend)
	}()
	wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		// A newer refresh started while this one was in flight.
		return l.snapshotLocked()
	}
	if petsErr != nil || kindsErr != nil {
		l.status = StatusFailed
		l.errText = api.SystemErrorMessage
		return l.snapshotLocked()
	}
	sort.Slice(pets, func(i, j int) bool { return pets[i].PetID > pets[j].PetID })
	l.items = pets
	l.status = StatusLoaded
	return l.snapshotLocked()
}

// Snapshot returns the currently published state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Loader) snapshotLocked() Snapshot {
	items := make([]api.PetListItem, len(l.items))
	copy(items, l.items)
	return Snapshot{Status: l.status, Items: items, ErrText: l.errText}
}
