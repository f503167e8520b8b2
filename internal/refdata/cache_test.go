package refdata

import (
	"context"
	"errors"
	"testing"

	"github.com/HristoTrendafilov/pet-store/internal/api"
)

type fakeKindLister struct {
	calls int
	kinds []api.PetKind
	err   error
}

func (f *fakeKindLister) ListPetKinds(ctx context.Context) ([]api.PetKind, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.kinds, nil
}

func testKinds() []api.PetKind {
	return []api.PetKind{
		{Value: 1, DisplayName: "Cat"},
		{Value: 2, DisplayName: "Dog"},
		{Value: 3, DisplayName: "Parrot"},
	}
}

func TestEnsureLoadedFetchesAtMostOnce(t *testing.T) {
	lister := &fakeKindLister{kinds: testKinds()}
	cache := New()
	for i := 0; i < 2; i++ {
		if err := cache.EnsureLoaded(context.Background(), lister); err != nil {
			t.Fatalf("ensure loaded (call %d): %v", i+1, err)
		}
	}
	if lister.calls != 1 {
		t.Fatalf("expected exactly one kinds fetch, got %d", lister.calls)
	}
	name, ok := cache.DisplayName(3)
	if !ok || name != "Parrot" {
		t.Fatalf("expected kind 3 to resolve to Parrot, got %q (ok=%v)", name, ok)
	}
	if got := len(cache.Kinds()); got != 3 {
		t.Fatalf("expected 3 kinds, got %d", got)
	}
}

func TestEnsureLoadedRetriesAfterFailure(t *testing.T) {
	lister := &fakeKindLister{err: errors.New("down")}
	cache := New()
	if err := cache.EnsureLoaded(context.Background(), lister); err == nil {
		t.Fatalf("expected failure to surface")
	}
	if cache.Loaded() {
		t.Fatalf("cache must stay empty after a failed fetch")
	}
	lister.err = nil
	lister.kinds = testKinds()
	if err := cache.EnsureLoaded(context.Background(), lister); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("expected a second fetch after failure, got %d calls", lister.calls)
	}
	if !cache.Loaded() {
		t.Fatalf("cache should be populated after retry")
	}
}

func TestDuplicateKindValuesFavorLastEntry(t *testing.T) {
	lister := &fakeKindLister{kinds: []api.PetKind{
		{Value: 1, DisplayName: "Cat"},
		{Value: 1, DisplayName: "Lion"},
	}}
	cache := New()
	if err := cache.EnsureLoaded(context.Background(), lister); err != nil {
		t.Fatalf("ensure loaded: %v", err)
	}
	name, ok := cache.DisplayName(1)
	if !ok || name != "Lion" {
		t.Fatalf("expected last entry to win, got %q", name)
	}
	if got := len(cache.Kinds()); got != 2 {
		t.Fatalf("raw list must keep both entries, got %d", got)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	lister := &fakeKindLister{kinds: testKinds()}
	cache := New()
	if err := cache.EnsureLoaded(context.Background(), lister); err != nil {
		t.Fatalf("ensure loaded: %v", err)
	}
	cache.Invalidate()
	if cache.Loaded() {
		t.Fatalf("invalidate should clear the cache")
	}
	if err := cache.EnsureLoaded(context.Background(), lister); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("expected refetch after invalidate, got %d calls", lister.calls)
	}
}
