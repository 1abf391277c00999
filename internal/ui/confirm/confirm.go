// Package confirm is a choice dialog driven by remote buttons.
package confirm

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavestv/internal/keymap"
	"github.com/llehouerou/wavestv/internal/ui/popup"
	"github.com/llehouerou/wavestv/internal/ui/styles"
)

// Result is the outcome of a closed dialog. Option is the index of the
// chosen option; Back chooses the last one.
type Result struct {
	Option    int
	Cancelled bool
}

// Model is a row of options under a message.
type Model struct {
	title    string
	message  string
	options  []string
	selected int
	active   bool
}

// Show opens the dialog. The last option is the cancelling one.
func (m *Model) Show(title, message string, options ...string) {
	if len(options) == 0 {
		options = []string{"OK"}
	}
	*m = Model{
		title:   title,
		message: message,
		options: options,
		active:  true,
	}
}

// Active reports whether the dialog is open.
func (m Model) Active() bool { return m.active }

// Selected returns the highlighted option.
func (m Model) Selected() int { return m.selected }

// Handle applies a remote action. It returns the result once the dialog
// closes.
func (m *Model) Handle(a keymap.Action) (Result, bool) {
	if !m.active {
		return Result{}, false
	}
	last := len(m.options) - 1
	switch a {
	case keymap.ActionLeft, keymap.ActionUp:
		m.selected = max(m.selected-1, 0)
	case keymap.ActionRight, keymap.ActionDown:
		m.selected = min(m.selected+1, last)
	case keymap.ActionSelect:
		m.active = false
		return Result{Option: m.selected, Cancelled: m.selected == last}, true
	case keymap.ActionBack:
		m.active = false
		return Result{Option: last, Cancelled: true}, true
	}
	return Result{}, false
}

// View renders the dialog box, or "" when closed.
func (m Model) View(maxWidth int) string {
	if !m.active {
		return ""
	}
	st := styles.T().S()
	buttons := make([]string, len(m.options))
	for i, opt := range m.options {
		style := st.Control
		if i == m.selected {
			style = st.Highlight
		}
		buttons[i] = style.Render(" " + opt + " ")
	}
	row := strings.Join(buttons, "  ")
	body := st.Base.Render(m.message) + "\n\n" +
		lipgloss.PlaceHorizontal(max(lipgloss.Width(m.message), lipgloss.Width(row)), lipgloss.Center, row)
	return popup.Dialog{Title: m.title, Body: body}.Render(maxWidth)
}
