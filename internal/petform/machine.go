// Package petform governs the Add/View/Edit lifecycle of a single pet
// record inside the pet modal. The lifecycle is an explicit state machine:
//
//	New ──submit──────────────▶ View
//	Loading ──load ok─────────▶ View
//	Loading ──load failed─────▶ Failed (blocking, no save path)
//	View ──unlock─────────────▶ Edit
//	Edit ──lock (discard)─────▶ View
//	Edit ──submit─────────────▶ View
//
// A submitting flag is orthogonal to the state; while it is set no
// transition and no dismissal is allowed. Submit reports its outcome as a
// value so the hosting shell decides what closing or refreshing means.
package petform

import (
	"context"
	"fmt"
	"sync"

	"github.com/HristoTrendafilov/pet-store/internal/api"
	"github.com/HristoTrendafilov/pet-store/internal/refdata"
)

// State is the form's position in its lifecycle.
type State int

const (
	StateNew State = iota
	StateLoading
	StateView
	StateEdit
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateLoading:
		return "loading"
	case StateView:
		return "view"
	case StateEdit:
		return "edit"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SubmitOutcome tells the hosting shell what a Submit call did.
type SubmitOutcome int

const (
	// SubmitNotAllowed: submit was invoked outside New/Edit or while a
	// submit was already in flight. Nothing happened.
	SubmitNotAllowed SubmitOutcome = iota
	SubmitCreated
	SubmitUpdated
	SubmitValidationFailed
	SubmitServerError
)

// SubmitResult carries the outcome plus the inline messages (validation) or
// the fresh server record (success).
type SubmitResult struct {
	Outcome     SubmitOutcome
	FieldErrors FieldErrors
	Pet         api.Pet
}

// Backend is the slice of the API client the machine needs.
type Backend interface {
	GetPet(ctx context.Context, petID int) (api.Pet, error)
	CreatePet(ctx context.Context, data api.PetFormData) (api.Pet, error)
	UpdatePet(ctx context.Context, petID int, data api.PetFormData) (api.Pet, error)
}

// Machine is the pet form state machine. All methods are safe to call from
// the view's command goroutines; network calls run with the lock released.
type Machine struct {
	backend Backend
	cache   *refdata.Cache

	mu         sync.Mutex
	petID      int
	fetched    *api.Pet
	values     Values
	state      State
	submitting bool
	errText    string
}

// NewAdd opens the machine for a brand new pet: state New, empty values
// with the added date preset to today.
func NewAdd(backend Backend, cache *refdata.Cache) *Machine {
	return &Machine{
		backend: backend,
		cache:   cache,
		values:  initialValues(),
		state:   StateNew,
	}
}

// NewForPet opens the machine for an existing pet. The machine starts in
// Loading; the caller must drive Load before anything else is possible.
func NewForPet(backend Backend, cache *refdata.Cache, petID int) *Machine {
	return &Machine{
		backend: backend,
		cache:   cache,
		petID:   petID,
		state:   StateLoading,
	}
}

// Load fetches the pet the machine was opened for. Loading→View on success,
// Loading→Failed on error; any other starting state is a no-op.
func (m *Machine) Load(ctx context.Context) State {
	m.mu.Lock()
	if m.state != StateLoading {
		defer m.mu.Unlock()
		return m.state
	}
	petID := m.petID
	m.mu.Unlock()

	pet, err := m.backend.GetPet(ctx, petID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateFailed
		m.errText = api.SystemErrorMessage
		return m.state
	}
	m.fetched = &pet
	m.values = valuesFromPet(pet)
	m.state = StateView
	m.errText = ""
	return m.state
}

// Unlock transitions View→Edit. Refused while submitting.
func (m *Machine) Unlock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateView || m.submitting {
		return false
	}
	m.state = StateEdit
	return true
}

// Lock cancels an edit: Edit→View, discarding in-progress input and
// restoring the values of the last successfully fetched pet. No network.
func (m *Machine) Lock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateEdit || m.submitting {
		return false
	}
	if m.fetched != nil {
		m.values = valuesFromPet(*m.fetched)
	}
	m.state = StateView
	return true
}

// Submit validates, coerces and sends the form. On success the server's
// response replaces the in-memory pet (the server owns normalized fields)
// and the machine lands in View. On a server failure the machine stays in
// its originating state with the uniform error text set.
func (m *Machine) Submit(ctx context.Context) SubmitResult {
	m.mu.Lock()
	if (m.state != StateNew && m.state != StateEdit) || m.submitting {
		m.mu.Unlock()
		return SubmitResult{Outcome: SubmitNotAllowed}
	}
	data, fieldErrs := m.values.coerce(m.cache)
	if len(fieldErrs) > 0 {
		m.mu.Unlock()
		return SubmitResult{Outcome: SubmitValidationFailed, FieldErrors: fieldErrs}
	}
	editing := m.fetched != nil
	if editing {
		// Kind and added date are immutable once a pet exists. Whatever the
		// form holds, the server only ever sees the fetched values.
		data.Kind = m.fetched.Kind
		data.AddedDate = m.fetched.AddedDate
	}
	petID := 0
	if editing {
		petID = m.fetched.PetID
	}
	m.submitting = true
	m.errText = ""
	m.mu.Unlock()

	var (
		pet api.Pet
		err error
	)
	if editing {
		pet, err = m.backend.UpdatePet(ctx, petID, data)
	} else {
		pet, err = m.backend.CreatePet(ctx, data)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if err != nil {
		m.errText = api.SystemErrorMessage
		return SubmitResult{Outcome: SubmitServerError}
	}
	m.fetched = &pet
	m.values = valuesFromPet(pet)
	m.state = StateView
	if editing {
		return SubmitResult{Outcome: SubmitUpdated, Pet: pet}
	}
	return SubmitResult{Outcome: SubmitCreated, Pet: pet}
}

// SetValues replaces the uncommitted input. Allowed only while the form is
// actually editable (New or Edit, not submitting).
func (m *Machine) SetValues(values Values) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if (m.state != StateNew && m.state != StateEdit) || m.submitting {
		return false
	}
	m.values = values
	return true
}

// Values returns the current form input.
func (m *Machine) Values() Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Submitting reports whether a create/update call is in flight.
func (m *Machine) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitting
}

// ErrText returns the uniform error message, if any.
func (m *Machine) ErrText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errText
}

// FetchedPet returns the last record the server confirmed.
func (m *Machine) FetchedPet() (api.Pet, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetched == nil {
		return api.Pet{}, false
	}
	return *m.fetched, true
}

// Editable reports whether form fields accept input at all.
func (m *Machine) Editable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.state == StateNew || m.state == StateEdit) && !m.submitting
}

// KindAndDateLocked reports whether the kind and added-date controls must
// stay disabled even while unlocked; true as soon as the pet has an id.
func (m *Machine) KindAndDateLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetched != nil
}

// CanDelete reports whether the nested delete confirmation may open; only
// from View, and never mid-submit.
func (m *Machine) CanDelete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateView && !m.submitting
}

// CanDismiss reports whether the modal may close right now. Nothing closes
// while submitting or loading. A backdrop-style dismissal is additionally
// refused in Edit so unsaved changes are never discarded silently; the
// explicit close controls remain available there.
func (m *Machine) CanDismiss(backdrop bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting || m.state == StateLoading {
		return false
	}
	if backdrop && m.state == StateEdit {
		return false
	}
	return true
}

// Title names the modal for the current state.
func (m *Machine) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.state == StateEdit:
		return titleFor("Edit", m.fetched, m.petID)
	case m.fetched == nil && m.petID == 0:
		return "Add pet"
	default:
		return titleFor("View", m.fetched, m.petID)
	}
}

func titleFor(verb string, fetched *api.Pet, petID int) string {
	id := petID
	if fetched != nil {
		id = fetched.PetID
	}
	return fmt.Sprintf("%s pet #%d", verb, id)
}
