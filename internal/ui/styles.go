package ui

import (
	"charm.land/lipgloss/v2"
)

var (
	dimColor = lipgloss.Color("240") // gray

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	flagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	causeStyle   = lipgloss.NewStyle().Foreground(dimColor).Italic(true)
)
