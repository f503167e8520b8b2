package tui

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HristoTrendafilov/pet-store/internal/api"
	"github.com/HristoTrendafilov/pet-store/internal/logbook"
	"github.com/HristoTrendafilov/pet-store/internal/mockapi"
	"github.com/HristoTrendafilov/pet-store/internal/petform"
	"github.com/HristoTrendafilov/pet-store/internal/petlist"
)

func TestColdRefreshPopulatesTable(t *testing.T) {
	app, _ := newTestApp(t)
	app = runCommands(t, app, app.Init())

	if app.snapshot.Status != petlist.StatusLoaded {
		t.Fatalf("expected loaded snapshot, got %s (%s)", app.snapshot.Status, app.snapshot.ErrText)
	}
	rows := app.table.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "44" || rows[1][0] != "43" || rows[2][0] != "42" {
		t.Fatalf("rows not newest first: %v", rows)
	}
	if rows[0][3] != "Parrot" {
		t.Fatalf("pet 44 should render kind Parrot, got %q", rows[0][3])
	}
	if rows[2][2] != "31 Oct 2022" {
		t.Fatalf("pet 42 should render its added date, got %q", rows[2][2])
	}
}

func TestFailedRefreshShowsUniformError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	// Nothing accepts connections on this address once closed.
	addr := ln.Addr().String()
	_ = ln.Close()
	client, err := api.NewClient("http://"+addr, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	app := NewApp(client, nil)
	app = runCommands(t, app, app.Init())
	if app.snapshot.Status != petlist.StatusFailed {
		t.Fatalf("expected failed snapshot, got %s", app.snapshot.Status)
	}
	if app.statusMsg != api.SystemErrorMessage {
		t.Fatalf("expected the uniform error message, got %q", app.statusMsg)
	}
}

func TestAddPetThroughTheShell(t *testing.T) {
	app, store := newTestApp(t)
	app = runCommands(t, app, app.Init())

	app = press(t, app, keyRune('a'))
	if app.state != stateForm || app.form == nil {
		t.Fatalf("expected add form to open")
	}
	if got := app.form.machine.State(); got != petform.StateNew {
		t.Fatalf("expected New state, got %s", got)
	}

	app = press(t, app,
		typed("Rex"),
		key(tea.KeyTab),   // → kind
		key(tea.KeyRight), // Cat
		key(tea.KeyRight), // Dog
		key(tea.KeyTab),   // → age
		typed("3"),
		key(tea.KeyCtrlS),
	)

	if got := app.form.machine.State(); got != petform.StateView {
		t.Fatalf("expected View after save, got %s", got)
	}
	pet, ok := store.Get(45)
	if !ok {
		t.Fatalf("created pet missing from backend store")
	}
	if pet.PetName != "Rex" || pet.Kind != 2 || pet.Age != 3 {
		t.Fatalf("unexpected stored pet: %+v", pet)
	}
	if app.snapshot.Items[0].PetID != 45 {
		t.Fatalf("list should refresh with the new pet first, got %+v", app.snapshot.Items[0])
	}
}

func TestViewFormIsReadOnly(t *testing.T) {
	app, _ := newTestApp(t)
	app = runCommands(t, app, app.Init())

	app = press(t, app, key(tea.KeyEnter))
	if app.state != stateForm || app.form == nil {
		t.Fatalf("expected view form to open")
	}
	if got := app.form.machine.State(); got != petform.StateView {
		t.Fatalf("expected View after load, got %s", got)
	}
	if got := app.form.nameInput.Value(); got != "Kenny" {
		t.Fatalf("expected name Kenny, got %q", got)
	}

	app = press(t, app, typed("zzz"))
	if got := app.form.machine.Values().PetName; got != "Kenny" {
		t.Fatalf("read-only form accepted input: %q", got)
	}

	app = press(t, app, key(tea.KeyEsc))
	if app.state != stateList || app.form != nil {
		t.Fatalf("esc should close the view form")
	}
}

func TestEditEscDiscardsChanges(t *testing.T) {
	app, store := newTestApp(t)
	app = runCommands(t, app, app.Init())

	app = press(t, app, key(tea.KeyEnter), key(tea.KeyCtrlE))
	if got := app.form.machine.State(); got != petform.StateEdit {
		t.Fatalf("expected Edit after unlock, got %s", got)
	}
	app = press(t, app, typed(" II"))
	if got := app.form.machine.Values().PetName; got != "Kenny II" {
		t.Fatalf("expected edited name, got %q", got)
	}

	app = press(t, app, key(tea.KeyEsc))
	if got := app.form.machine.State(); got != petform.StateView {
		t.Fatalf("esc should lock back to View, got %s", got)
	}
	if got := app.form.machine.Values().PetName; got != "Kenny" {
		t.Fatalf("expected values to revert, got %q", got)
	}
	if pet, _ := store.Get(44); pet.PetName != "Kenny" {
		t.Fatalf("backend must be untouched, got %q", pet.PetName)
	}
	if app.state != stateForm {
		t.Fatalf("esc from Edit must not close the modal")
	}
}

func TestDeleteFromListRefreshes(t *testing.T) {
	app, store := newTestApp(t)
	app = runCommands(t, app, app.Init())

	app = press(t, app, keyRune('d'))
	if app.state != stateDelete || app.del == nil {
		t.Fatalf("expected delete confirmation to open")
	}
	app = press(t, app, key(tea.KeyEnter))

	if _, ok := store.Get(44); ok {
		t.Fatalf("pet 44 should be deleted")
	}
	if app.state != stateList || app.del != nil {
		t.Fatalf("delete should close the modal")
	}
	if len(app.snapshot.Items) != 2 {
		t.Fatalf("expected 2 pets after delete, got %d", len(app.snapshot.Items))
	}
}

func TestDeleteCancelLeavesEverything(t *testing.T) {
	app, store := newTestApp(t)
	app = runCommands(t, app, app.Init())

	app = press(t, app, keyRune('d'), key(tea.KeyEsc))
	if app.state != stateList || app.del != nil {
		t.Fatalf("cancel should close the confirmation")
	}
	if _, ok := store.Get(44); !ok {
		t.Fatalf("cancel must not delete anything")
	}
	if len(app.snapshot.Items) != 3 {
		t.Fatalf("cancel must not change the list, got %d items", len(app.snapshot.Items))
	}
}

func newTestApp(t *testing.T) (*App, *mockapi.Store) {
	t.Helper()
	store := mockapi.SeedStore()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := mockapi.NewServer(store)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	client, err := api.NewClient("http://"+ln.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	book, err := logbook.New(filepath.Join(t.TempDir(), "petstore.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	app := NewApp(client, book)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model.(*App), store
}

// runCommands pumps commands to completion so tests observe the settled
// model, including nested batches.
func runCommands(t *testing.T, app *App, cmd tea.Cmd) *App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		model, nextCmd := app.Update(msg)
		var ok bool
		app, ok = model.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", model)
		}
		queue = append(queue, nextCmd)
	}
	return app
}

func press(t *testing.T, app *App, msgs ...tea.Msg) *App {
	t.Helper()
	for _, msg := range msgs {
		model, cmd := app.Update(msg)
		var ok bool
		app, ok = model.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", model)
		}
		app = runCommands(t, app, cmd)
	}
	return app
}

func key(keyType tea.KeyType) tea.Msg {
	return tea.KeyMsg{Type: keyType}
}

func keyRune(r rune) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typed(text string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}
