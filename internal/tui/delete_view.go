package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HristoTrendafilov/pet-store/internal/api"
	"github.com/HristoTrendafilov/pet-store/internal/petdelete"
)

// deleteView hosts the delete confirmation modal. The petdelete flow owns
// the rules: while the DELETE call runs nothing here can dismiss it.
type deleteView struct {
	app  *App
	flow *petdelete.Flow

	name     string
	kind     string
	added    api.Date
	deleting bool
}

func newDeleteView(app *App, flow *petdelete.Flow, name, kind string, added api.Date) *deleteView {
	return &deleteView{app: app, flow: flow, name: name, kind: kind, added: added}
}

func (v *deleteView) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "enter", "y":
		if v.flow.State() != petdelete.StateConfirming {
			return nil
		}
		v.deleting = true
		flow := v.flow
		return tea.Batch(func() tea.Msg {
			return deleteFinishedMsg{petID: flow.PetID(), deleted: flow.Confirm(context.Background())}
		}, v.app.spinner.Tick)
	case "esc", "n":
		if !v.flow.CanDismiss() {
			return nil
		}
		if v.flow.Cancel() {
			return v.app.closeDelete()
		}
	}
	return nil
}

func (v *deleteView) View() string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Delete pet #%d", v.flow.PetID())),
		"",
		fmt.Sprintf("  %s %s", labelStyle.Render("Name"), v.name),
		fmt.Sprintf("  %s %s", labelStyle.Render("Kind"), v.kind),
		fmt.Sprintf("  %s %s", labelStyle.Render("Added date"), v.added.Display()),
		"",
	}
	if v.deleting {
		lines = append(lines, fmt.Sprintf("%s Deleting...", v.app.spinner.View()))
	} else {
		if errText := v.flow.ErrText(); errText != "" {
			lines = append(lines, errorStyle.Render(errText), "")
		}
		lines = append(lines, hintStyle.Render("enter → delete    esc → cancel"))
	}
	return strings.Join(lines, "\n")
}
