package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorPrimary   = lipgloss.Color("#00BFFF") // Deep sky blue
	colorSecondary = lipgloss.Color("#87CEEB") // Sky blue
	colorWarning   = lipgloss.Color("#FFD93D") // Yellow for sun and moon
	colorSuccess   = lipgloss.Color("#6BCF7F") // Green
	colorMuted     = lipgloss.Color("#6C757D") // Gray
	colorBorder    = lipgloss.Color("#4A90E2") // Border blue

	// Title styles (no padding - paneStyle already has padding)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// Pane styles
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			MarginRight(1)

	// Content styles
	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// Calendar cells
	dayStyle = lipgloss.NewStyle().
			Width(4).
			Align(lipgloss.Right)

	selectedDayStyle = dayStyle.
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorPrimary)

	todayStyle = dayStyle.
			Foreground(colorSuccess).
			Bold(true)

	outsideDayStyle = dayStyle.
			Foreground(colorMuted)

	// Event styles
	highStyle = lipgloss.NewStyle().Foreground(colorSecondary)
	lowStyle  = lipgloss.NewStyle().Foreground(colorBorder)
	skyStyle  = lipgloss.NewStyle().Foreground(colorWarning)

	// Utility styles
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
