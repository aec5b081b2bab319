// Package ui holds the terminal presentation pieces of the importer:
// lipgloss styles for status output and the Prompter used for the few
// interactive decisions a run can need.
package ui

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
)

// SuccessStyle is used for the final completion message.
var SuccessStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// WarnStyle is used for interruption and resume notices.
var WarnStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow)

// ErrorStyle is used for fatal error messages.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// ProgressStyle is used for the per-thread counter during the import.
var ProgressStyle = lipgloss.NewStyle().
	Foreground(ColorBlue)

// SubtleStyle is used for secondary detail lines.
var SubtleStyle = lipgloss.NewStyle().
	Foreground(ColorGray)
