// internal/tui/app.go
//
// The terminal shell of the pet-store admin client. It uses bubbletea,
// which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The App owns the pet table; the add/view/edit form and the delete
// confirmation are modal sub-views layered on top of it. All network work
// happens in commands, so Update never blocks.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/HristoTrendafilov/pet-store/internal/api"
	"github.com/HristoTrendafilov/pet-store/internal/logbook"
	"github.com/HristoTrendafilov/pet-store/internal/petdelete"
	"github.com/HristoTrendafilov/pet-store/internal/petform"
	"github.com/HristoTrendafilov/pet-store/internal/petlist"
	"github.com/HristoTrendafilov/pet-store/internal/refdata"
)

// appState represents which "screen" we're on
type appState int

const (
	stateList   appState = iota // the pet table
	stateForm                   // add/view/edit modal
	stateDelete                 // delete confirmation modal
)

type refreshDoneMsg struct {
	snapshot petlist.Snapshot
}

type formLoadedMsg struct {
	state petform.State
}

type formSubmittedMsg struct {
	result petform.SubmitResult
}

type deleteFinishedMsg struct {
	petID   int
	deleted bool
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
)

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	client  *api.Client
	cache   *refdata.Cache
	loader  *petlist.Loader
	logbook *logbook.Logbook

	state      appState
	table      table.Model
	spinner    spinner.Model
	snapshot   petlist.Snapshot
	refreshing bool
	statusMsg  string

	form           *formView
	del            *deleteView
	deleteFromForm bool

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates the shell around an API client. The logbook may be nil.
func NewApp(client *api.Client, book *logbook.Logbook) *App {
	columns := []table.Column{
		{Title: "#", Width: 5},
		{Title: "Name", Width: 20},
		{Title: "Added date", Width: 12},
		{Title: "Kind", Width: 10},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	cache := refdata.New()
	return &App{
		client:  client,
		cache:   cache,
		loader:  petlist.New(client, cache),
		logbook: book,
		table:   tbl,
		spinner: sp,
	}
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.refreshCmd(), a.spinner.Tick)
}

// refreshCmd clears and reloads the pet table in the background.
func (a *App) refreshCmd() tea.Cmd {
	a.refreshing = true
	loader := a.loader
	return func() tea.Msg {
		return refreshDoneMsg{snapshot: loader.Refresh(context.Background())}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.table.SetHeight(max(5, msg.Height-16))
		return a, nil

	case spinner.TickMsg:
		if !a.refreshing && !a.busyModal() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case refreshDoneMsg:
		a.refreshing = false
		a.snapshot = msg.snapshot
		a.applySnapshot()
		if msg.snapshot.Status == petlist.StatusFailed {
			a.statusMsg = msg.snapshot.ErrText
		} else {
			a.statusMsg = fmt.Sprintf("%d pet(s) loaded", len(msg.snapshot.Items))
		}
		return a, nil

	case formLoadedMsg, formSubmittedMsg:
		if a.form == nil {
			return a, nil
		}
		return a, a.form.Update(msg)

	case deleteFinishedMsg:
		return a, a.handleDeleteFinished(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.state {
	case stateForm:
		if a.form == nil {
			return a, nil
		}
		return a, a.form.Update(msg)

	case stateDelete:
		if a.del == nil {
			return a, nil
		}
		return a, a.del.Update(msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		a.statusMsg = "Refreshing pet list..."
		return a, tea.Batch(a.refreshCmd(), a.spinner.Tick)
	case "a":
		return a.openAddForm()
	case "enter":
		return a.openViewForm()
	case "d":
		return a.openDeleteFromList()
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func (a *App) openAddForm() (tea.Model, tea.Cmd) {
	if a.snapshot.Status != petlist.StatusLoaded {
		a.statusMsg = "Pet list is still loading"
		return a, nil
	}
	a.form = newFormView(a, petform.NewAdd(a.client, a.cache))
	a.state = stateForm
	a.statusMsg = ""
	return a, nil
}

func (a *App) openViewForm() (tea.Model, tea.Cmd) {
	item, ok := a.selectedItem()
	if !ok {
		return a, nil
	}
	a.form = newFormView(a, petform.NewForPet(a.client, a.cache, item.PetID))
	a.state = stateForm
	a.statusMsg = ""
	return a, tea.Batch(a.form.loadCmd(), a.spinner.Tick)
}

func (a *App) openDeleteFromList() (tea.Model, tea.Cmd) {
	item, ok := a.selectedItem()
	if !ok {
		return a, nil
	}
	kind, _ := a.cache.DisplayName(item.Kind)
	a.del = newDeleteView(a, petdelete.New(a.client, item.PetID), item.PetName, kind, item.AddedDate)
	a.deleteFromForm = false
	a.state = stateDelete
	a.statusMsg = ""
	return a, nil
}

// openDeleteFromForm stacks the delete confirmation on top of the view form.
func (a *App) openDeleteFromForm() tea.Cmd {
	if a.form == nil || !a.form.machine.CanDelete() {
		return nil
	}
	pet, ok := a.form.machine.FetchedPet()
	if !ok {
		return nil
	}
	kind, _ := a.cache.DisplayName(pet.Kind)
	a.del = newDeleteView(a, petdelete.New(a.client, pet.PetID), pet.PetName, kind, pet.AddedDate)
	a.deleteFromForm = true
	a.state = stateDelete
	return nil
}

func (a *App) closeForm() tea.Cmd {
	a.form = nil
	a.state = stateList
	return nil
}

func (a *App) closeDelete() tea.Cmd {
	a.del = nil
	if a.deleteFromForm && a.form != nil {
		a.state = stateForm
	} else {
		a.state = stateList
	}
	a.deleteFromForm = false
	return nil
}

func (a *App) handleDeleteFinished(msg deleteFinishedMsg) tea.Cmd {
	if a.del != nil {
		a.del.deleting = false
		if !msg.deleted {
			a.statusMsg = a.del.flow.ErrText()
			return nil
		}
	}
	a.del = nil
	a.form = nil
	a.deleteFromForm = false
	a.state = stateList
	a.statusMsg = fmt.Sprintf("Pet #%d deleted", msg.petID)
	a.logbook.Info("Pet #%d deleted", msg.petID)
	return tea.Batch(a.refreshCmd(), a.spinner.Tick)
}

func (a *App) selectedItem() (api.PetListItem, bool) {
	if a.snapshot.Status != petlist.StatusLoaded || len(a.snapshot.Items) == 0 {
		return api.PetListItem{}, false
	}
	idx := a.table.Cursor()
	if idx < 0 || idx >= len(a.snapshot.Items) {
		return api.PetListItem{}, false
	}
	return a.snapshot.Items[idx], true
}

// applySnapshot rebuilds the table rows from the published list state. Rows
// only exist for a loaded snapshot, so every kind resolves from the cache.
func (a *App) applySnapshot() {
	rows := make([]table.Row, 0, len(a.snapshot.Items))
	for _, item := range a.snapshot.Items {
		kind, _ := a.cache.DisplayName(item.Kind)
		rows = append(rows, table.Row{
			strconv.Itoa(item.PetID),
			item.PetName,
			item.AddedDate.Display(),
			kind,
		})
	}
	a.table.SetRows(rows)
}

// busyModal reports whether a modal has a call in flight and the spinner
// should keep ticking.
func (a *App) busyModal() bool {
	if a.form != nil {
		if a.form.machine.Submitting() || a.form.machine.State() == petform.StateLoading {
			return true
		}
	}
	if a.del != nil && a.del.flow.State() == petdelete.StateDeleting {
		return true
	}
	return false
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}

	header := headerStyle.Render("⬡ PET STORE")

	var content string
	switch a.state {
	case stateForm:
		content = a.form.View()
	case stateDelete:
		content = a.del.View()
	default:
		content = a.renderList()
	}
	box := panelStyle.Width(max(40, width-4)).Render(content)

	sections := []string{header, box}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	if a.statusMsg != "" {
		sections = append(sections, footerStyle.Render(a.statusMsg))
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderList() string {
	if a.refreshing {
		return fmt.Sprintf("%s Loading pets...", a.spinner.View())
	}
	if a.snapshot.Status == petlist.StatusFailed {
		return strings.Join([]string{
			errorStyle.Render(a.snapshot.ErrText),
			hintStyle.Render("r → retry    q → quit"),
		}, "\n")
	}
	hints := hintStyle.Render("a → add    enter → view    d → delete    r → refresh    q → quit")
	return strings.Join([]string{a.table.View(), hints}, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := hintStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}
