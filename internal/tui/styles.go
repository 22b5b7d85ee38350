package tui

import "github.com/charmbracelet/lipgloss"

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
)
