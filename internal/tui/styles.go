// Package tui provides the terminal surface for Escalytics.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Sobarinetech/elscalyticsone/internal/severity"
)

// Tokyo Night inspired color palette
var (
	colorFg      = lipgloss.Color("#c0caf5")
	colorFgMuted = lipgloss.Color("#565f89")
	colorHigh    = lipgloss.Color("#f7768e")
	colorMedium  = lipgloss.Color("#e0af68")
	colorLow     = lipgloss.Color("#9ece6a")
	colorAccent  = lipgloss.Color("#7aa2f7")
)

var (
	styleTitle = lipgloss.NewStyle().
			Foreground(colorFg).
			Bold(true).
			MarginBottom(1)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorFgMuted)

	styleBanner = lipgloss.NewStyle().
			Foreground(colorLow).
			Bold(true)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorMedium).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorHigh).
			Bold(true)

	stylePanelHeader = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFgMuted).
			Padding(0, 1)
)

func severityColor(level severity.Level) lipgloss.Color {
	switch level {
	case severity.High:
		return colorHigh
	case severity.Medium:
		return colorMedium
	default:
		return colorLow
	}
}

func severityBadge(level severity.Level) string {
	return lipgloss.NewStyle().
		Foreground(severityColor(level)).
		Bold(true).
		Render(string(level))
}
