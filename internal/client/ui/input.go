package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrInputCancelled is returned when the user leaves a prompt with Esc or Ctrl+C.
var ErrInputCancelled = errors.New("input cancelled")

// InputModel is a single-line prompt.
type InputModel struct {
	title   string
	input   textinput.Model
	done    bool
	aborted bool
}

// NewSecretInput echoes a bullet per typed character.
func NewSecretInput(title string) InputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Focus()
	return InputModel{title: title, input: ti}
}

func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m InputModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("Enter confirm • Esc cancel"))
	return b.String()
}

func (m InputModel) Value() string {
	return m.input.Value()
}

// Submitted is true once Enter was pressed.
func (m InputModel) Submitted() bool {
	return m.done && !m.aborted
}

// ReadSecret prompts for a value without echoing it.
func ReadSecret(title string) (string, error) {
	result, err := tea.NewProgram(NewSecretInput(title)).Run()
	if err != nil {
		return "", fmt.Errorf("failed to run prompt: %w", err)
	}
	m := result.(InputModel)
	if !m.Submitted() {
		return "", ErrInputCancelled
	}
	return m.Value(), nil
}
