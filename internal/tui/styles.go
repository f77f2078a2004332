package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/droughtwatch/droughtwatch/internal/api"
)

// Shared lipgloss styles for the dashboard.
//
//nolint:gochecknoglobals // Render constants shared by all views.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	SubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	NoteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("179")).Italic(true)
	ValueStyle  = lipgloss.NewStyle().Bold(true)
	CardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// severityColors approximates the web map's legend palette in ANSI.
//
//nolint:gochecknoglobals // Render constant lookup table.
var severityColors = map[string]lipgloss.Color{
	api.ClassNormalWet: lipgloss.Color("42"),
	api.ClassD0:        lipgloss.Color("226"),
	api.ClassD1:        lipgloss.Color("214"),
	api.ClassD2:        lipgloss.Color("208"),
	api.ClassD3:        lipgloss.Color("196"),
	api.ClassD4:        lipgloss.Color("124"),
	api.ClassNA:        lipgloss.Color("245"),
}

// SeverityStyle returns the chip style for one severity class.
func SeverityStyle(class string) lipgloss.Style {
	c, ok := severityColors[class]
	if !ok {
		c = lipgloss.Color("245")
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
