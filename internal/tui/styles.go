package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles of the search block.
type Styles struct {
	Prompt      lipgloss.Style
	Marker      lipgloss.Style
	Placeholder lipgloss.Style
}

// DefaultStyles returns the colored styles, bound to renderer r so the color
// profile matches the terminal they are drawn on.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Prompt:      r.NewStyle().Foreground(lipgloss.Color("2")),
		Marker:      r.NewStyle().Foreground(lipgloss.Color("2")),
		Placeholder: r.NewStyle().Faint(true),
	}
}

// PlainStyles renders everything as plain text.
func PlainStyles() Styles {
	return DefaultStyles(lipgloss.NewRenderer(io.Discard))
}
