package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/workbench/internal/tui/styles"
)

// StatusBar renders a bottom help bar with contextual key hints on the left
// and an optional notice (already styled) on the right.
type StatusBar struct{}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// Render returns the status bar string for the given width and items.
// Items are joined with " • " separator and padded to fill the width.
func (s StatusBar) Render(width int, items []string) string {
	return s.RenderWithNotice(width, items, "")
}

// RenderWithNotice renders the help items and right-aligns notice. When both
// don't fit, the notice wins and the help is dropped.
func (s StatusBar) RenderWithNotice(width int, items []string, notice string) string {
	help := lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(items, " • "))
	if notice == "" {
		return styles.StatusBarStyle.Width(width).Render(help)
	}

	gap := width - lipgloss.Width(help) - lipgloss.Width(notice)
	if gap < 1 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, notice)
	}
	return styles.StatusBarStyle.Render(help) + strings.Repeat(" ", gap) + notice
}
