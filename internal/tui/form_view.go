package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/HristoTrendafilov/pet-store/internal/api"
	"github.com/HristoTrendafilov/pet-store/internal/petform"
)

type formField int

const (
	fieldName formField = iota
	fieldKind
	fieldAge
	fieldDate
	fieldHealth
	fieldNotes
	fieldCount
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).Width(16)
	fieldErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	lockedValStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	focusMarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	staticValStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
)

// formView hosts the add/view/edit modal. All lifecycle decisions live in
// the petform machine; the view only maps keys to transitions and renders
// whatever the machine allows.
type formView struct {
	app     *App
	machine *petform.Machine

	nameInput textinput.Model
	ageInput  textinput.Model
	dateInput textinput.Model
	notes     textarea.Model
	kinds     []api.PetKind
	kindIdx   int
	health    bool
	focus     formField
	fieldErrs petform.FieldErrors
}

func newFormView(app *App, machine *petform.Machine) *formView {
	name := textinput.New()
	name.CharLimit = 64
	name.Width = 32
	age := textinput.New()
	age.CharLimit = 3
	age.Width = 8
	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = 10
	date.Width = 12
	notes := textarea.New()
	notes.SetWidth(48)
	notes.SetHeight(3)

	v := &formView{
		app:       app,
		machine:   machine,
		nameInput: name,
		ageInput:  age,
		dateInput: date,
		notes:     notes,
		kinds:     app.cache.Kinds(),
	}
	v.pullValues()
	v.setFocus(fieldName)
	return v
}

// loadCmd fetches the record the machine was opened for.
func (v *formView) loadCmd() tea.Cmd {
	m := v.machine
	return func() tea.Msg {
		return formLoadedMsg{state: m.Load(context.Background())}
	}
}

func (v *formView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case formLoadedMsg:
		if msg.state == petform.StateFailed {
			v.app.statusMsg = v.machine.ErrText()
			return nil
		}
		v.kinds = v.app.cache.Kinds()
		v.pullValues()
		return nil
	case formSubmittedMsg:
		return v.handleSubmitted(msg.result)
	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return nil
}

func (v *formView) handleSubmitted(result petform.SubmitResult) tea.Cmd {
	switch result.Outcome {
	case petform.SubmitValidationFailed:
		v.fieldErrs = result.FieldErrors
		v.app.statusMsg = "Please fix the highlighted fields"
	case petform.SubmitServerError:
		v.app.statusMsg = v.machine.ErrText()
	case petform.SubmitCreated:
		v.fieldErrs = nil
		v.pullValues()
		v.setFocus(v.focus)
		v.app.statusMsg = fmt.Sprintf("Pet #%d created", result.Pet.PetID)
		v.app.logbook.Info("Pet #%d created", result.Pet.PetID)
		return tea.Batch(v.app.refreshCmd(), v.app.spinner.Tick)
	case petform.SubmitUpdated:
		v.fieldErrs = nil
		v.pullValues()
		v.setFocus(v.focus)
		v.app.statusMsg = fmt.Sprintf("Pet #%d updated", result.Pet.PetID)
		v.app.logbook.Info("Pet #%d updated", result.Pet.PetID)
		return tea.Batch(v.app.refreshCmd(), v.app.spinner.Tick)
	}
	return nil
}

func (v *formView) handleKey(msg tea.KeyMsg) tea.Cmd {
	m := v.machine
	switch msg.String() {
	case "esc":
		// Esc from Edit discards back to View; everywhere else it asks to
		// close, which the machine refuses while loading or submitting.
		if m.State() == petform.StateEdit {
			if m.Lock() {
				v.fieldErrs = nil
				v.pullValues()
				v.setFocus(v.focus)
			}
			return nil
		}
		if m.CanDismiss(false) {
			return v.app.closeForm()
		}
		return nil
	case "ctrl+s":
		return v.submitCmd()
	case "ctrl+e":
		if m.Unlock() {
			v.setFocus(fieldName)
		}
		return nil
	case "ctrl+d":
		return v.app.openDeleteFromForm()
	case "tab":
		v.setFocus(v.nextFocus(1))
		return nil
	case "shift+tab":
		v.setFocus(v.nextFocus(-1))
		return nil
	}

	if !m.Editable() {
		return nil
	}
	switch v.focus {
	case fieldKind:
		switch msg.String() {
		case "left", "h":
			v.cycleKind(-1)
		case "right", "l", " ":
			v.cycleKind(1)
		}
	case fieldHealth:
		if msg.String() == " " || msg.String() == "enter" {
			v.health = !v.health
			v.pushValues()
		}
	case fieldName:
		var cmd tea.Cmd
		v.nameInput, cmd = v.nameInput.Update(msg)
		v.pushValues()
		return cmd
	case fieldAge:
		var cmd tea.Cmd
		v.ageInput, cmd = v.ageInput.Update(msg)
		v.pushValues()
		return cmd
	case fieldDate:
		var cmd tea.Cmd
		v.dateInput, cmd = v.dateInput.Update(msg)
		v.pushValues()
		return cmd
	case fieldNotes:
		var cmd tea.Cmd
		v.notes, cmd = v.notes.Update(msg)
		v.pushValues()
		return cmd
	}
	return nil
}

func (v *formView) submitCmd() tea.Cmd {
	if !v.machine.Editable() {
		return nil
	}
	v.pushValues()
	m := v.machine
	return tea.Batch(func() tea.Msg {
		return formSubmittedMsg{result: m.Submit(context.Background())}
	}, v.app.spinner.Tick)
}

// pullValues loads the machine's values into the edit controls.
func (v *formView) pullValues() {
	values := v.machine.Values()
	v.nameInput.SetValue(values.PetName)
	v.ageInput.SetValue(values.Age)
	v.dateInput.SetValue(values.AddedDate)
	v.notes.SetValue(values.Notes)
	v.health = values.HealthProblems
	v.kindIdx = -1
	for i, kind := range v.kinds {
		if strconv.Itoa(kind.Value) == strings.TrimSpace(values.Kind) {
			v.kindIdx = i
			break
		}
	}
}

// pushValues hands the control contents back to the machine.
func (v *formView) pushValues() {
	kind := ""
	if v.kindIdx >= 0 && v.kindIdx < len(v.kinds) {
		kind = strconv.Itoa(v.kinds[v.kindIdx].Value)
	}
	v.machine.SetValues(petform.Values{
		PetName:        v.nameInput.Value(),
		Kind:           kind,
		Age:            v.ageInput.Value(),
		Notes:          v.notes.Value(),
		HealthProblems: v.health,
		AddedDate:      v.dateInput.Value(),
	})
}

func (v *formView) cycleKind(dir int) {
	if len(v.kinds) == 0 {
		return
	}
	if v.kindIdx < 0 {
		v.kindIdx = 0
	} else {
		v.kindIdx = (v.kindIdx + dir + len(v.kinds)) % len(v.kinds)
	}
	v.pushValues()
}

func (v *formView) focusable(f formField) bool {
	if !v.machine.Editable() {
		return false
	}
	if (f == fieldKind || f == fieldDate) && v.machine.KindAndDateLocked() {
		return false
	}
	return true
}

func (v *formView) nextFocus(dir int) formField {
	f := v.focus
	for i := 0; i < int(fieldCount); i++ {
		f = formField((int(f) + dir + int(fieldCount)) % int(fieldCount))
		if v.focusable(f) {
			return f
		}
	}
	return v.focus
}

func (v *formView) setFocus(f formField) {
	v.focus = f
	v.nameInput.Blur()
	v.ageInput.Blur()
	v.dateInput.Blur()
	v.notes.Blur()
	if !v.focusable(f) {
		return
	}
	switch f {
	case fieldName:
		v.nameInput.Focus()
	case fieldAge:
		v.ageInput.Focus()
	case fieldDate:
		v.dateInput.Focus()
	case fieldNotes:
		v.notes.Focus()
	}
}

func (v *formView) View() string {
	m := v.machine
	title := titleStyle.Render(m.Title())

	switch m.State() {
	case petform.StateLoading:
		return strings.Join([]string{
			title,
			fmt.Sprintf("%s Loading pet...", v.app.spinner.View()),
		}, "\n")
	case petform.StateFailed:
		return strings.Join([]string{
			title,
			errorStyle.Render(m.ErrText()),
			hintStyle.Render("esc → close"),
		}, "\n")
	}

	lines := []string{title, ""}
	lines = append(lines, v.renderField(fieldName, "Name", v.nameInput.View(), v.staticValue(fieldName)))
	lines = append(lines, v.renderField(fieldKind, "Kind", v.kindControl(), v.kindLabel()))
	lines = append(lines, v.renderField(fieldAge, "Age", v.ageInput.View(), v.staticValue(fieldAge)))
	lines = append(lines, v.renderField(fieldDate, "Added date", v.dateInput.View(), v.staticValue(fieldDate)))
	lines = append(lines, v.renderField(fieldHealth, "Health problems", v.healthControl(), v.healthControl()))
	lines = append(lines, v.renderField(fieldNotes, "Notes", v.notes.View(), v.staticValue(fieldNotes)))

	if m.Submitting() {
		lines = append(lines, "", fmt.Sprintf("%s Saving...", v.app.spinner.View()))
	} else if errText := m.ErrText(); errText != "" {
		lines = append(lines, "", errorStyle.Render(errText))
	}
	lines = append(lines, "", hintStyle.Render(v.hints()))
	return strings.Join(lines, "\n")
}

// renderField shows the live control while the field accepts input and a
// static value otherwise.
func (v *formView) renderField(f formField, label, control, static string) string {
	marker := "  "
	if v.focus == f && v.focusable(f) {
		marker = focusMarkStyle.Render("> ")
	}
	value := static
	if v.focusable(f) {
		value = control
	} else if v.machine.Editable() {
		// Editable form, immutable field: kind and added date once saved.
		value = lockedValStyle.Render(static + "  (locked)")
	}
	line := fmt.Sprintf("%s%s %s", marker, labelStyle.Render(label), value)
	if msg, ok := v.fieldErrs[fieldErrorKey(f)]; ok {
		line += "\n" + strings.Repeat(" ", 16) + fieldErrStyle.Render(msg)
	}
	return line
}

func fieldErrorKey(f formField) string {
	switch f {
	case fieldName:
		return petform.FieldName
	case fieldKind:
		return petform.FieldKind
	case fieldAge:
		return petform.FieldAge
	case fieldDate:
		return petform.FieldAddedDate
	case fieldNotes:
		return petform.FieldNotes
	default:
		return ""
	}
}

func (v *formView) staticValue(f formField) string {
	values := v.machine.Values()
	switch f {
	case fieldName:
		return staticValStyle.Render(values.PetName)
	case fieldAge:
		return staticValStyle.Render(values.Age)
	case fieldDate:
		if added, err := api.ParseDate(values.AddedDate); err == nil {
			return staticValStyle.Render(added.Display())
		}
		return staticValStyle.Render(values.AddedDate)
	case fieldNotes:
		return staticValStyle.Render(values.Notes)
	default:
		return ""
	}
}

func (v *formView) kindLabel() string {
	if v.kindIdx >= 0 && v.kindIdx < len(v.kinds) {
		return staticValStyle.Render(v.kinds[v.kindIdx].DisplayName)
	}
	return hintStyle.Render("(none)")
}

func (v *formView) kindControl() string {
	return fmt.Sprintf("◀ %s ▶", v.kindLabel())
}

func (v *formView) healthControl() string {
	if v.health {
		return "[x] yes"
	}
	return "[ ] no"
}

func (v *formView) hints() string {
	switch v.machine.State() {
	case petform.StateNew:
		return "tab → next field    ctrl+s → save    esc → close"
	case petform.StateEdit:
		return "tab → next field    ctrl+s → save    esc → discard changes"
	default:
		return "ctrl+e → edit    ctrl+d → delete    esc → close"
	}
}
