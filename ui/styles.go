// Package ui formats quotes and summaries for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	textStyle   = lipgloss.NewStyle().Italic(true)
	authorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	linkStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)
