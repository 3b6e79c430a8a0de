package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/workbench/internal/testutil"
	"github.com/pablasso/workbench/internal/tui/msgs"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	return NewModel(testutil.NewState(t, nil))
}

func resize(m Model, width, height int) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return next.(Model)
}

func TestModel_View_TerminalTooSmall(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		expectSmall bool
	}{
		{"exactly minimum", MinTerminalWidth, MinTerminalHeight, false},
		{"width too small", MinTerminalWidth - 1, MinTerminalHeight, true},
		{"height too small", MinTerminalWidth, MinTerminalHeight - 1, true},
		{"both dimensions too small", MinTerminalWidth - 10, MinTerminalHeight - 5, true},
		{"larger than minimum", 100, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := resize(newTestModel(t), tt.width, tt.height)
			view := m.View()

			if tt.expectSmall {
				for _, want := range []string{"Terminal too small", "Minimum:", "Current:"} {
					if !strings.Contains(view, want) {
						t.Errorf("expected view to contain %q", want)
					}
				}
			} else {
				if strings.Contains(view, "Terminal too small") {
					t.Error("did not expect view to contain 'Terminal too small'")
				}
				if !strings.Contains(view, "Feature Workbench") {
					t.Error("expected the board to be shown")
				}
			}
		})
	}
}

func TestModel_renderTerminalTooSmall_ShowsDimensions(t *testing.T) {
	m := newTestModel(t)
	m.width = 50
	m.height = 10

	view := m.renderTerminalTooSmall()

	if !strings.Contains(view, "60x15") {
		t.Error("expected minimum dimensions 60x15 to be shown")
	}
	if !strings.Contains(view, "50x10") {
		t.Error("expected current dimensions 50x10 to be shown")
	}
}

func TestModel_View_LinesFitTerminal(t *testing.T) {
	m := resize(newTestModel(t), 80, 20)

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 lines, got %d", len(lines))
	}
}

func TestModel_StorageChanged_ReachesBoard(t *testing.T) {
	m := resize(newTestModel(t), 80, 20)

	next, _ := m.Update(msgs.StorageChangedMsg{})
	m = next.(Model)

	if !m.board.ExternalChange() {
		t.Error("expected board to record the external change")
	}
	if !strings.Contains(m.View(), "Changed elsewhere") {
		t.Error("expected status bar to warn about the external change")
	}
}

func TestWaitForChange(t *testing.T) {
	if cmd := waitForChange(nil); cmd != nil {
		t.Error("expected no command without a change channel")
	}

	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	if msg := waitForChange(ch)(); msg != (msgs.StorageChangedMsg{}) {
		t.Errorf("expected StorageChangedMsg, got %#v", msg)
	}

	close(ch)
	if msg := waitForChange(ch)(); msg != nil {
		t.Errorf("expected nil after the channel closes, got %#v", msg)
	}
}

func TestModel_Quit(t *testing.T) {
	m := resize(newTestModel(t), 80, 20)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
