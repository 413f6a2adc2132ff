package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorError   = lipgloss.Color("#EF4444")
	colorSuccess = lipgloss.Color("#10B981")
	colorMuted   = lipgloss.Color("#6B7280")
	colorAccent  = lipgloss.Color("#F59E0B")

	pathStyle    = lipgloss.NewStyle().Bold(true)
	kindStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	posStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	okStyle      = lipgloss.NewStyle().Foreground(colorSuccess)
	summaryStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)
