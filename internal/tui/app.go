// Package tui runs the interactive board.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/workbench/internal/app"
	"github.com/pablasso/workbench/internal/tui/msgs"
	"github.com/pablasso/workbench/internal/tui/styles"
	"github.com/pablasso/workbench/internal/tui/views"
)

// Minimum terminal dimensions the board can lay itself out in.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 15
)

// Model is the root Bubble Tea model. It owns the board and relays storage
// change notifications to it.
type Model struct {
	state  *app.State
	board  views.BoardModel
	width  int
	height int
}

// Run starts the TUI over state and blocks until the user quits.
func Run(state *app.State) error {
	p := tea.NewProgram(
		NewModel(state),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

// NewModel creates the root model.
func NewModel(state *app.State) Model {
	return Model{
		state: state,
		board: views.NewBoardModel(state),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForChange(m.state.Changes())}
	if m.state.Seeded() {
		cmds = append(cmds, func() tea.Msg {
			return msgs.NoticeMsg{Text: "Started a new workbench"}
		})
	}
	if err := m.state.SaveError(); err != nil {
		cmds = append(cmds, func() tea.Msg {
			return msgs.NoticeMsg{Text: fmt.Sprintf("Could not save: %v", err), Error: true}
		})
	}
	return tea.Batch(cmds...)
}

// waitForChange blocks on the state's change channel and reports one change.
// It returns nil when the backend isn't watched.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return msgs.StorageChangedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.board.SetSize(msg.Width, msg.Height)
		return m, nil

	case msgs.StorageChangedMsg:
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		return m, tea.Batch(cmd, waitForChange(m.state.Changes()))
	}

	var cmd tea.Cmd
	m.board, cmd = m.board.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width < MinTerminalWidth || m.height < MinTerminalHeight {
		return m.renderTerminalTooSmall()
	}
	return m.board.View()
}

func (m Model) renderTerminalTooSmall() string {
	content := styles.ErrorStyle.Render("Terminal too small") + "\n\n" +
		styles.SubtleStyle.Render(fmt.Sprintf("Minimum: %dx%d", MinTerminalWidth, MinTerminalHeight)) + "\n" +
		styles.SubtleStyle.Render(fmt.Sprintf("Current: %dx%d", m.width, m.height))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
