// Package ui holds the shared lipgloss styles for CLI output.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette (Ayu theme).
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#aad94c"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#8a9199", Dark: "#565b66"}
)

var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Foreground(ColorMuted)

	Header = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

	Pass = lipgloss.NewStyle().Foreground(ColorPass)
	Warn = lipgloss.NewStyle().Foreground(ColorWarn)
	Fail = lipgloss.NewStyle().Foreground(ColorFail)
)

// Outcome glyphs.
const (
	GlyphPass = "✓"
	GlyphWarn = "!"
	GlyphFail = "✗"
)
