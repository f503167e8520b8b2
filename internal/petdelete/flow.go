// Package petdelete governs the confirm/cancel lifecycle of deleting one
// pet:
//
//	Confirming ──confirm──▶ Deleting ──ok──▶ Deleted (terminal)
//	Confirming ──cancel───▶ Cancelled (terminal)
//	Deleting ──failed─────▶ Confirming (error set, retry or cancel)
//
// While Deleting every dismissal affordance is disabled; Cancel is a no-op
// and the deletion runs to completion.
package petdelete

import (
	"context"
	"sync"

	"github.com/HristoTrendafilov/pet-store/internal/api"
)

// State is the flow's position in its lifecycle.
type State int

const (
	StateConfirming State = iota
	StateDeleting
	StateDeleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateConfirming:
		return "confirming"
	case StateDeleting:
		return "deleting"
	case StateDeleted:
		return "deleted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Backend is the slice of the API client the flow needs.
type Backend interface {
	DeletePet(ctx context.Context, petID int) (api.Pet, error)
}

// Flow is the delete confirmation state machine for a single pet.
type Flow struct {
	backend Backend

	mu      sync.Mutex
	petID   int
	state   State
	errText string
}

// New opens the flow in Confirming for the given pet.
func New(backend Backend, petID int) *Flow {
	return &Flow{backend: backend, petID: petID}
}

// Confirm performs the deletion. Only valid from Confirming; reports whether
// the pet is gone. On failure the flow returns to Confirming with the
// uniform error text set so the user can retry or cancel.
func (f *Flow) Confirm(ctx context.Context) bool {
	f.mu.Lock()
	if f.state != StateConfirming {
		f.mu.Unlock()
		return false
	}
	f.state = StateDeleting
	f.errText = ""
	petID := f.petID
	f.mu.Unlock()

	_, err := f.backend.DeletePet(ctx, petID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateConfirming
		f.errText = api.SystemErrorMessage
		return false
	}
	f.state = StateDeleted
	return true
}

// Cancel closes the flow with no side effects. Only valid from Confirming;
// while Deleting it does nothing and reports false.
func (f *Flow) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateConfirming {
		return false
	}
	f.state = StateCancelled
	return true
}

// CanDismiss reports whether any dismissal affordance is currently allowed.
func (f *Flow) CanDismiss() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == StateConfirming
}

// State returns the current lifecycle state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ErrText returns the uniform error message, if any.
func (f *Flow) ErrText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errText
}

// PetID returns the pet this flow was opened for.
func (f *Flow) PetID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.petID
}
