package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// ListViewport shows a window of pre-rendered lines with a scrollbar on the
// right. The owner decides which line is selected and asks the viewport to
// keep it visible.
type ListViewport struct {
	viewport viewport.Model
	lines    []string
	width    int // total width including scrollbar
	height   int
}

// NewListViewport creates a ListViewport. The width includes 1 column for the
// scrollbar.
func NewListViewport(width, height int) ListViewport {
	vp := viewport.New(max(width-1, 0), height)
	vp.SetContent("")
	return ListViewport{viewport: vp, width: width, height: height}
}

// SetSize updates the dimensions and clamps the scroll offset.
func (l *ListViewport) SetSize(width, height int) {
	if l.width == width && l.height == height {
		return
	}
	l.width = width
	l.height = height
	l.viewport.Width = max(width-1, 0)
	l.viewport.Height = height
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	l.viewport.SetYOffset(l.viewport.YOffset)
}

// SetLines replaces the content, keeping the current offset where possible.
func (l *ListViewport) SetLines(lines []string) {
	l.lines = append(l.lines[:0], lines...)
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	l.viewport.SetYOffset(l.viewport.YOffset)
}

// EnsureVisible scrolls the minimum amount needed for line index to be on
// screen.
func (l *ListViewport) EnsureVisible(index int) {
	if index < 0 || index >= len(l.lines) {
		return
	}
	top := l.viewport.YOffset
	bottom := top + l.height - 1
	if index < top {
		l.viewport.SetYOffset(index)
	} else if index > bottom {
		l.viewport.SetYOffset(index - l.height + 1)
	}
}

// YOffset returns the index of the first visible line.
func (l ListViewport) YOffset() int {
	return l.viewport.YOffset
}

// View renders the visible lines padded to the content width, followed by
// the scrollbar column.
func (l ListViewport) View() string {
	content := strings.Split(l.viewport.View(), "\n")
	bar := strings.Split(RenderScrollbar(l.height, len(l.lines), l.viewport.YOffset), "\n")
	contentWidth := max(l.width-1, 0)

	var b strings.Builder
	for i := 0; i < l.height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := ""
		if i < len(content) {
			line = content[i]
		}
		b.WriteString(line)
		if pad := contentWidth - lipgloss.Width(line); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		if i < len(bar) {
			b.WriteString(bar[i])
		}
	}
	return b.String()
}
