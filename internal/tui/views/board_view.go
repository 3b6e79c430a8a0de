package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/pablasso/workbench/internal/tui/components"
	"github.com/pablasso/workbench/internal/tui/styles"
	"github.com/pablasso/workbench/internal/util"
	"github.com/pablasso/workbench/internal/workbench"
)

const (
	progressWidth = 10
	statusWidth   = 11 // len("Not started")
)

// View implements tea.Model.
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	lines := []string{
		m.renderHeader(),
		m.renderFilterLine(),
		"",
		m.list.View(),
		m.renderDetail(),
		m.renderPrompt(),
		m.renderStatusBar(),
	}
	return strings.Join(lines, "\n")
}

// layout re-renders the rows into the list viewport and scrolls the
// selected row into view.
func (m *BoardModel) layout() {
	clip := lipgloss.NewStyle().MaxWidth(max(m.width-1, 0))

	lines := make([]string, 0, len(m.rows)+1)
	selectedRow := -1
	for i, row := range m.rows {
		if row.item < 0 {
			lines = append(lines, clip.Render(m.renderGroupHeading(row.group)))
			continue
		}
		if row.item == m.cursor {
			selectedRow = i
		}
		lines = append(lines, clip.Render(m.renderFeatureLine(m.items[row.item], row.item == m.cursor)))
	}
	if len(m.items) == 0 {
		lines = append(lines, styles.SubtleStyle.Render("  No features match. Esc clears filters."))
	}

	m.list.SetLines(lines)
	if selectedRow > 0 && m.rows[selectedRow-1].item < 0 {
		// Keep the group heading visible above its first feature.
		m.list.EnsureVisible(selectedRow - 1)
	}
	m.list.EnsureVisible(selectedRow)
}

func (m BoardModel) renderHeader() string {
	doc := m.state.Doc()
	counts := workbench.Counts(doc.Features)

	left := styles.TitleStyle.Render(doc.Title) +
		styles.SubtleStyle.Render(fmt.Sprintf("  %d %s", counts.Total(), pluralize(counts.Total(), "feature")))
	right := components.NewProgress(counts[workbench.StatusDone], counts.Total(), progressWidth).View()

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m BoardModel) renderFilterLine() string {
	phase := "All"
	if p, ok := m.state.Doc().Phase(m.filter.PhaseID); ok {
		phase = p.Name
	}
	status := "All"
	if m.filter.Status != "" {
		status = m.filter.Status.Label()
	}
	parts := []string{"Phase: " + phase, "Status: " + status}
	if m.filter.Text != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", m.filter.Text))
	}
	return styles.SubtleStyle.Render(strings.Join(parts, "   "))
}

func (m BoardModel) renderGroupHeading(g workbench.Group) string {
	heading := styles.PhaseStyle.Render(g.Name())
	count := styles.SubtleStyle.Render(fmt.Sprintf(" (%d)", len(g.Features)))
	if len(g.Features) == 0 {
		count = styles.SubtleStyle.Render(" (empty)")
	}
	return heading + count
}

func (m BoardModel) renderFeatureLine(f workbench.Feature, selected bool) string {
	indicator := "  "
	title := f.Title
	if selected {
		indicator = styles.SelectedStyle.Render("› ")
		title = styles.SelectedStyle.Render(title)
	} else if f.Status == workbench.StatusDone {
		title = styles.SubtleStyle.Render(title)
	}

	label := styles.StatusStyle(f.Status).Render(fmt.Sprintf("%-*s", statusWidth, f.Status.Label()))
	line := indicator + label + "  " + title
	if len(f.Tags) > 0 {
		line += "  " + styles.SubtleStyle.Render("#"+strings.Join(f.Tags, " #"))
	}
	return line
}

func (m BoardModel) renderDetail() string {
	f, ok := m.Selected()
	if !ok {
		return ""
	}
	phase := "Unassigned"
	if p, ok := m.state.PhasesByID()[f.PhaseID]; ok {
		phase = p.Name
	}
	parts := []string{
		util.ShortID(f.ID),
		phase,
		"updated " + humanize.Time(time.UnixMilli(f.UpdatedAt)),
	}
	if f.Description != "" {
		parts = append(parts, f.Description)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(styles.SubtleStyle.Render(strings.Join(parts, " · ")))
}

func (m BoardModel) renderPrompt() string {
	switch m.mode {
	case ModeSearch:
		return "Search: " + m.input.View()
	case ModeEditTitle:
		return "Title: " + m.input.View()
	case ModeEditTags:
		return "Tags (comma separated): " + m.input.View()
	case ModeNewFeature:
		return "New feature: " + m.input.View()
	case ModeNewPhase:
		return "New phase: " + m.input.View()
	case ModeRenameDoc:
		return "Workbench title: " + m.input.View()
	case ModeConfirmDelete:
		f, _ := m.Selected()
		return styles.ErrorStyle.Render(fmt.Sprintf("Delete %q? y/n", f.Title))
	}
	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return styles.ErrorStyle.Render(m.notice)
	}
	return styles.SuccessStyle.Render(m.notice)
}

func (m BoardModel) renderStatusBar() string {
	var items []string
	switch m.mode {
	case ModeBrowse:
		items = []string{"↑↓ Navigate", "space Status", "e/t Edit", "n/p New", "/ Search", "q Quit"}
	case ModeConfirmDelete:
		items = []string{"y Delete", "any key Cancel"}
	default:
		items = []string{"Enter Save", "Esc Cancel"}
	}

	var warnings []string
	if err := m.state.SaveError(); err != nil {
		warnings = append(warnings, styles.ErrorStyle.Render("Not saved"))
	}
	if m.external {
		warnings = append(warnings, styles.WarningStyle.Render("Changed elsewhere, R reloads"))
	}
	if m.state.SharedSession() {
		warnings = append(warnings, styles.WarningStyle.Render("Shared storage"))
	}

	return components.NewStatusBar().RenderWithNotice(m.width, items, strings.Join(warnings, " · "))
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
