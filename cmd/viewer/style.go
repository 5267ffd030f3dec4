package main

import "github.com/charmbracelet/lipgloss"

var (
	appStyle    = lipgloss.NewStyle().Margin(1, 2)
	yearStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 2)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	hiddenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	legendStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	tableStyle  = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	// Slider glyphs.
	tickStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

// layerColor matches the web map fill colours.
func layerColor(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Bold(true)
}
