package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

// TierOption is one row of the upgrade picker.
type TierOption struct {
	Tier        models.Tier
	Label       string
	Description string
}

// PaidTiers lists the tiers that can be bought, cheapest first.
func PaidTiers() []TierOption {
	return []TierOption{
		{Tier: models.TierPro, Label: "Pro", Description: fmt.Sprintf("%d requests per day", models.TierPro.Quota())},
		{Tier: models.TierProPlus, Label: "Pro Plus", Description: fmt.Sprintf("%d requests per day", models.TierProPlus.Quota())},
	}
}

// TierPickerModel is the Bubble Tea model for choosing a tier.
type TierPickerModel struct {
	title    string
	options  []TierOption
	current  models.Tier
	cursor   int
	selected int
	quitting bool
	aborted  bool
}

func NewTierPicker(title string, options []TierOption, current models.Tier) TierPickerModel {
	m := TierPickerModel{
		title:    title,
		options:  options,
		current:  current,
		selected: -1,
	}
	// Start on the first tier above the current one.
	for i, opt := range options {
		if opt.Tier.Quota() > current.Quota() {
			m.cursor = i
			break
		}
	}
	return m
}

func (m TierPickerModel) Init() tea.Cmd {
	return nil
}

func (m TierPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.aborted = true
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}

	case "enter", " ":
		m.selected = m.cursor
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m TierPickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	for i, opt := range m.options {
		cursor := "  "
		style := UnselectedStyle
		if i == m.cursor {
			cursor = CursorStyle.Render("▸ ")
			style = SelectedStyle
		}

		label := opt.Label
		if opt.Tier == m.current {
			label += " (current)"
		}

		b.WriteString(cursor)
		b.WriteString(style.Render(label))
		if opt.Description != "" {
			b.WriteString("\n    ")
			b.WriteString(HelpStyle.Render(opt.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ move • Enter select • Esc cancel"))

	return b.String()
}

// Chosen returns the picked tier, or false if the user cancelled.
func (m TierPickerModel) Chosen() (models.Tier, bool) {
	if m.aborted || m.selected < 0 || m.selected >= len(m.options) {
		return "", false
	}
	return m.options[m.selected].Tier, true
}

// PickTier runs the picker and returns the chosen tier, or false on cancel.
func PickTier(current models.Tier) (models.Tier, bool, error) {
	m := NewTierPicker("Choose a plan", PaidTiers(), current)

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", false, fmt.Errorf("failed to run tier picker: %w", err)
	}

	tier, ok := result.(TierPickerModel).Chosen()
	return tier, ok, nil
}
