package petlist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/HristoTrendafilov/pet-store/internal/api"
	"github.com/HristoTrendafilov/pet-store/internal/refdata"
)

type fakeBackend struct {
	mu         sync.Mutex
	pets       []api.PetListItem
	petsErr    error
	kinds      []api.PetKind
	kindsErr   error
	petsCalls  int
	kindsCalls int

	// When set, ListPets closes petsStarted on entry and then blocks until
	// petsGate is closed. Both are consumed by the first call only.
	petsGate    chan struct{}
	petsStarted chan struct{}
}

func (f *fakeBackend) ListPets(ctx context.Context) ([]api.PetListItem, error) {
	f.mu.Lock()
	f.petsCalls++
	gate, started := f.petsGate, f.petsStarted
	pets, err := f.pets, f.petsErr
	f.petsGate, f.petsStarted = nil, nil
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}
	return pets, err
}

func (f *fakeBackend) ListPetKinds(ctx context.Context) ([]api.PetKind, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kindsCalls++
	return f.kinds, f.kindsErr
}

func mustDate(t *testing.T, value string) api.Date {
	t.Helper()
	d, err := api.ParseDate(value)
	if err != nil {
		t.Fatalf("parse date %s: %v", value, err)
	}
	return d
}

func seededBackend(t *testing.T) *fakeBackend {
	t.Helper()
	return &fakeBackend{
		pets: []api.PetListItem{
			{PetID: 42, PetName: "Gosho", AddedDate: mustDate(t, "2022-10-31"), Kind: 1},
			{PetID: 44, PetName: "Kenny", AddedDate: mustDate(t, "2022-10-27"), Kind: 3},
			{PetID: 43, PetName: "Pesho", AddedDate: mustDate(t, "2022-10-25"), Kind: 2},
		},
		kinds: []api.PetKind{
			{Value: 1, DisplayName: "Cat"},
			{Value: 2, DisplayName: "Dog"},
			{Value: 3, DisplayName: "Parrot"},
		},
	}
}

func TestRefreshSortsNewestFirst(t *testing.T) {
	backend := seededBackend(t)
	cache := refdata.New()
	loader := New(backend, cache)

	snap := loader.Refresh(context.Background())
	if snap.Status != StatusLoaded {
		t.Fatalf("expected loaded status, got %s", snap.Status)
	}
	want := []int{44, 43, 42}
	if len(snap.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(snap.Items))
	}
	for i, id := range want {
		if snap.Items[i].PetID != id {
			t.Fatalf("position %d: expected pet %d, got %d", i, id, snap.Items[i].PetID)
		}
	}
	// Scenario A: every row's kind resolves through the published map.
	if name, ok := cache.DisplayName(snap.Items[0].Kind); !ok || name != "Parrot" {
		t.Fatalf("expected pet 44 to resolve to Parrot, got %q (ok=%v)", name, ok)
	}
}

func TestRefreshFailsWhollyWhenKindsFail(t *testing.T) {
	backend := seededBackend(t)
	backend.kindsErr = errors.New("kinds down")
	loader := New(backend, refdata.New())

	snap := loader.Refresh(context.Background())
	if snap.Status != StatusFailed {
		t.Fatalf("pets alone must not count as success, got %s", snap.Status)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("failed refresh must publish no items, got %d", len(snap.Items))
	}
	if snap.ErrText != api.SystemErrorMessage {
		t.Fatalf("unexpected error text: %q", snap.ErrText)
	}
}

func TestRefreshFailsWhollyWhenPetsFail(t *testing.T) {
	backend := seededBackend(t)
	backend.petsErr = errors.New("pets down")
	loader := New(backend, refdata.New())

	if snap := loader.Refresh(context.Background()); snap.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", snap.Status)
	}
}

func TestWarmCacheSkipsKindsFetch(t *testing.T) {
	backend := seededBackend(t)
	cache := refdata.New()
	loader := New(backend, cache)

	loader.Refresh(context.Background())
	loader.Refresh(context.Background())
	if backend.kindsCalls != 1 {
		t.Fatalf("expected one kinds fetch across refreshes, got %d", backend.kindsCalls)
	}
	if backend.petsCalls != 2 {
		t.Fatalf("expected a pets fetch per refresh, got %d", backend.petsCalls)
	}
}

func TestStaleRefreshDoesNotPublish(t *testing.T) {
	backend := seededBackend(t)
	loader := New(backend, refdata.New())

	gate := make(chan struct{})
	started := make(chan struct{})
	backend.mu.Lock()
	backend.petsGate = gate
	backend.petsStarted = started
	backend.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loader.Refresh(context.Background()) // stale: blocked on the gate
	}()
	<-started

	// The newer refresh completes while the first is still in flight.
	backend.mu.Lock()
	backend.pets = backend.pets[:1]
	backend.mu.Unlock()
	snap := loader.Refresh(context.Background())
	if snap.Status != StatusLoaded || len(snap.Items) != 1 {
		t.Fatalf("newer refresh should publish, got %s with %d items", snap.Status, len(snap.Items))
	}

	close(gate)
	wg.Wait()

	final := loader.Snapshot()
	if final.Status != StatusLoaded || len(final.Items) != 1 {
		t.Fatalf("stale completion overwrote newer state: %s with %d items", final.Status, len(final.Items))
	}
}
