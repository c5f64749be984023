package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no prompt.
type ConfirmModel struct {
	title       string
	description string
	yes         bool
	answered    bool
	aborted     bool
}

type ConfirmOption func(*ConfirmModel)

func WithDescription(desc string) ConfirmOption {
	return func(m *ConfirmModel) {
		m.description = desc
	}
}

// WithDefaultNo starts the prompt on No.
func WithDefaultNo() ConfirmOption {
	return func(m *ConfirmModel) {
		m.yes = false
	}
}

func NewConfirm(title string, opts ...ConfirmOption) ConfirmModel {
	m := ConfirmModel{title: title, yes: true}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.aborted = true
		return m, tea.Quit
	case "left", "h", "right", "l", "tab":
		m.yes = !m.yes
	case "y", "Y":
		m.yes, m.answered = true, true
		return m, tea.Quit
	case "n", "N":
		m.yes, m.answered = false, true
		return m, tea.Quit
	case "enter", " ":
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.answered || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")
	if m.description != "" {
		b.WriteString(HelpStyle.Render(m.description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	yes, no := UnselectedStyle.Render("Yes"), UnselectedStyle.Render("No")
	if m.yes {
		yes = CursorStyle.Render("▸ ") + SelectedStyle.Render("Yes")
		no = "  " + no
	} else {
		yes = "  " + yes
		no = CursorStyle.Render("▸ ") + SelectedStyle.Render("No")
	}
	b.WriteString(yes + "   " + no + "\n\n")
	b.WriteString(HelpStyle.Render("←/→ move • Enter confirm • y/n shortcut • Esc cancel"))

	return b.String()
}

// Confirmed is true only when the user answered Yes.
func (m ConfirmModel) Confirmed() bool {
	return m.answered && m.yes && !m.aborted
}

// Confirm runs the prompt. Cancelling counts as No.
func Confirm(title string, opts ...ConfirmOption) (bool, error) {
	result, err := tea.NewProgram(NewConfirm(title, opts...)).Run()
	if err != nil {
		return false, fmt.Errorf("failed to run confirm: %w", err)
	}
	return result.(ConfirmModel).Confirmed(), nil
}
