// Package ui provides terminal components for the iskra CLI using Bubble Tea
package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ErrorTTL is how long an error stays on a live status line.
const ErrorTTL = 5 * time.Second

var (
	// Colors
	primaryColor   = lipgloss.Color("#FF6600") // Iskra orange
	secondaryColor = lipgloss.Color("#888888")
	warningColor   = lipgloss.Color("#FFAA00")
	errorColor     = lipgloss.Color("#FF0000")
	successColor   = lipgloss.Color("#00C853")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	CursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// CreditsStyle and ExhaustedStyle color the remaining-requests indicator.
	CreditsStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	ExhaustedStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)
