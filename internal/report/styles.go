package report

import "github.com/charmbracelet/lipgloss"

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	Found = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ff88"))

	Missing = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ff4444"))

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Padding(0, 1)

	Cell = lipgloss.NewStyle().Padding(0, 1)

	Border = lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))
)
