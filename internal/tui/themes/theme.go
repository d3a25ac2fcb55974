package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title        lipgloss.Style
	Status       lipgloss.Style
	Help         lipgloss.Style
	Header       lipgloss.Style
	Selected     lipgloss.Style
	Positive     lipgloss.Style
	Neutral      lipgloss.Style
	Negative     lipgloss.Style
	Border       lipgloss.Color
	Primary      lipgloss.Color
	Muted        lipgloss.Color
	Foreground   lipgloss.Color
	Success      lipgloss.Color
	Warning      lipgloss.Color
	ErrorColor   lipgloss.Color
	BorderedBox  lipgloss.Style
	TableBorders lipgloss.Border
}

// Default is the default theme.
var Default = Theme{
	Primary:    lipgloss.Color("#7c3aed"),
	Success:    lipgloss.Color("#10b981"),
	Warning:    lipgloss.Color("#f59e0b"),
	ErrorColor: lipgloss.Color("#ef4444"),
	Foreground: lipgloss.Color("#fafafa"),
	Border:     lipgloss.Color("#404040"),
	Muted:      lipgloss.Color("#737373"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a78bfa")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Header: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7c3aed")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		BorderBottom(true),
	Selected: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		Background(lipgloss.Color("#7c3aed")),
	Positive: lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
	Neutral:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
	Negative: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),

	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	TableBorders: lipgloss.NormalBorder(),
}
