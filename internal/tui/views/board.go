package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/workbench/internal/app"
	"github.com/pablasso/workbench/internal/tui/components"
	"github.com/pablasso/workbench/internal/tui/msgs"
	"github.com/pablasso/workbench/internal/util"
	"github.com/pablasso/workbench/internal/workbench"
)

// BoardMode is what the board is currently doing with key presses.
type BoardMode int

const (
	// ModeBrowse navigates and acts on the selected feature.
	ModeBrowse BoardMode = iota
	// ModeSearch edits the free-text filter.
	ModeSearch
	// ModeEditTitle edits the selected feature's title.
	ModeEditTitle
	// ModeEditTags edits the selected feature's tags.
	ModeEditTags
	// ModeNewFeature prompts for a new feature title.
	ModeNewFeature
	// ModeNewPhase prompts for a new phase name.
	ModeNewPhase
	// ModeConfirmDelete waits for y/n before deleting the selected feature.
	ModeConfirmDelete
	// ModeRenameDoc edits the document title.
	ModeRenameDoc
)

// header: title, filter summary, blank. footer: detail, prompt, status bar.
const chromeHeight = 6

type boardRow struct {
	group workbench.Group
	item  int // -1 for a heading
}

// BoardModel shows the document's features grouped by phase and edits them
// in place.
type BoardModel struct {
	state  *app.State
	filter workbench.Filter
	mode   BoardMode
	input  textinput.Model
	list   components.ListViewport

	// items are the visible features in display order; rows are the
	// rendered lines, each a group heading or an index into items.
	items  []workbench.Feature
	rows   []boardRow
	cursor int

	notice    string
	noticeErr bool
	external  bool

	width  int
	height int
}

// NewBoardModel creates a board over the given state.
func NewBoardModel(state *app.State) BoardModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 200

	m := BoardModel{
		state: state,
		input: ti,
		list:  components.NewListViewport(0, 0),
	}
	m.refresh("")
	return m
}

// Init implements tea.Model.
func (m BoardModel) Init() tea.Cmd {
	return nil
}

// Mode returns the current interaction mode.
func (m BoardModel) Mode() BoardMode {
	return m.mode
}

// Filter returns the active board filter.
func (m BoardModel) Filter() workbench.Filter {
	return m.filter
}

// Items returns the visible features in display order.
func (m BoardModel) Items() []workbench.Feature {
	return m.items
}

// Selected returns the feature under the cursor.
func (m BoardModel) Selected() (workbench.Feature, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return workbench.Feature{}, false
	}
	return m.items[m.cursor], true
}

// Notice returns the transient message shown above the status bar.
func (m BoardModel) Notice() string {
	return m.notice
}

// ExternalChange reports whether another session rewrote storage since the
// last reload.
func (m BoardModel) ExternalChange() bool {
	return m.external
}

// SetSize updates the board dimensions.
func (m *BoardModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-24, 10)
	m.list.SetSize(width, max(height-chromeHeight, 1))
	m.layout()
}

// Update implements tea.Model.
func (m BoardModel) Update(msg tea.Msg) (BoardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case msgs.StorageChangedMsg:
		m.external = true
		return m, nil

	case msgs.NoticeMsg:
		m.setNotice(msg.Text, msg.Error)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case ModeBrowse:
			return m.handleBrowseKey(msg)
		case ModeConfirmDelete:
			return m.handleConfirmKey(msg)
		default:
			return m.handleInputKey(msg)
		}
	}

	if m.mode != ModeBrowse && m.mode != ModeConfirmDelete {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m BoardModel) handleBrowseKey(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	m.notice = ""
	m.noticeErr = false

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.layout()
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.layout()
		}
	case "tab":
		m.cyclePhaseFilter(1)
	case "shift+tab":
		m.cyclePhaseFilter(-1)
	case "s":
		m.cycleStatusFilter()
	case "esc":
		m.filter = workbench.Filter{}
		m.refresh(m.selectedID())
	case "/":
		return m.startInput(ModeSearch, m.filter.Text)
	case "n":
		if len(m.state.Doc().Phases) == 0 {
			m.setNotice("Add a phase first (p)", true)
			return m, nil
		}
		return m.startInput(ModeNewFeature, "")
	case "p":
		return m.startInput(ModeNewPhase, "")
	case "e":
		if f, ok := m.Selected(); ok {
			return m.startInput(ModeEditTitle, f.Title)
		}
	case "t":
		if f, ok := m.Selected(); ok {
			return m.startInput(ModeEditTags, strings.Join(f.Tags, ", "))
		}
	case "T":
		return m.startInput(ModeRenameDoc, m.state.Doc().Title)
	case " ", "space":
		if f, ok := m.Selected(); ok {
			m.apply(f.ID, m.state.CycleStatus(f.ID))
		}
	case "K", "shift+up":
		m.reorder(-1)
	case "J", "shift+down":
		m.reorder(1)
	case "[":
		m.shiftPhase(-1)
	case "]":
		m.shiftPhase(1)
	case "d":
		if _, ok := m.Selected(); ok {
			m.mode = ModeConfirmDelete
		}
	case "R":
		if m.state.Reload() {
			m.external = false
			m.refresh(m.selectedID())
			m.setNotice("Reloaded from storage", false)
		} else {
			m.setNotice("Nothing usable in storage; keeping current document", true)
		}
	}
	return m, nil
}

func (m BoardModel) handleConfirmKey(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	m.mode = ModeBrowse
	f, ok := m.Selected()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "y", "Y":
		if err := m.state.DeleteFeature(f.ID); err != nil {
			m.setNotice(err.Error(), true)
			return m, nil
		}
		m.refresh("")
		m.setNotice(fmt.Sprintf("Deleted %q", f.Title), false)
	default:
		m.setNotice("Delete cancelled", false)
	}
	return m, nil
}

func (m BoardModel) handleInputKey(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == ModeSearch {
			m.filter.Text = ""
			m.refresh(m.selectedID())
		}
		m.stopInput()
		return m, nil
	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.stopInput()
		m.submit(mode, value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == ModeSearch {
		m.filter.Text = strings.TrimSpace(m.input.Value())
		m.refresh(m.selectedID())
	}
	return m, cmd
}

func (m *BoardModel) startInput(mode BoardMode, value string) (BoardModel, tea.Cmd) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return *m, textinput.Blink
}

func (m *BoardModel) stopInput() {
	m.mode = ModeBrowse
	m.input.Blur()
	m.input.SetValue("")
}

func (m *BoardModel) submit(mode BoardMode, value string) {
	switch mode {
	case ModeSearch:
		m.filter.Text = strings.TrimSpace(value)
		m.refresh(m.selectedID())

	case ModeEditTitle:
		f, ok := m.Selected()
		if !ok {
			return
		}
		m.apply(f.ID, m.state.EditFeature(f.ID, workbench.FeaturePatch{Title: &value}))

	case ModeEditTags:
		f, ok := m.Selected()
		if !ok {
			return
		}
		tags := util.ParseTags(value)
		m.apply(f.ID, m.state.EditFeature(f.ID, workbench.FeaturePatch{Tags: &tags}))

	case ModeNewFeature:
		f, err := m.state.AddFeature(workbench.NewFeature{
			Title:   value,
			PhaseID: m.targetPhase(),
		})
		if err != nil {
			m.setNotice(errorText(err), true)
			return
		}
		m.refresh(f.ID)
		if m.selectedID() == f.ID {
			m.setNotice(fmt.Sprintf("Added %q", f.Title), false)
		} else {
			m.setNotice(fmt.Sprintf("Added %q (hidden by filter)", f.Title), false)
		}

	case ModeRenameDoc:
		if err := m.state.SetTitle(value); err != nil {
			m.setNotice(errorText(err), true)
			return
		}
		m.refresh(m.selectedID())
		m.setNotice(fmt.Sprintf("Renamed to %q", m.state.Doc().Title), false)

	case ModeNewPhase:
		p, err := m.state.AddPhase(value)
		if err != nil {
			m.setNotice(errorText(err), true)
			return
		}
		m.refresh(m.selectedID())
		m.setNotice(fmt.Sprintf("Added phase %q", p.Name), false)
	}
}

// apply refreshes the board after a mutation on feature id, or reports err.
func (m *BoardModel) apply(id string, err error) {
	if err != nil {
		m.setNotice(errorText(err), true)
		return
	}
	m.refresh(id)
}

// targetPhase picks the phase a new feature goes into: the filtered phase,
// then the selected feature's phase, then the first phase.
func (m BoardModel) targetPhase() string {
	byID := m.state.PhasesByID()
	if _, ok := byID[m.filter.PhaseID]; ok {
		return m.filter.PhaseID
	}
	if f, ok := m.Selected(); ok {
		if _, ok := byID[f.PhaseID]; ok {
			return f.PhaseID
		}
	}
	if phases := workbench.OrderedPhases(m.state.Doc()); len(phases) > 0 {
		return phases[0].ID
	}
	return ""
}

func (m *BoardModel) cyclePhaseFilter(step int) {
	options := []string{""}
	for _, p := range workbench.OrderedPhases(m.state.Doc()) {
		options = append(options, p.ID)
	}
	m.filter.PhaseID = options[nextIndex(options, m.filter.PhaseID, step)]
	m.refresh(m.selectedID())
}

func (m *BoardModel) cycleStatusFilter() {
	options := []workbench.Status{""}
	options = append(options, workbench.Statuses...)
	m.filter.Status = options[nextIndex(options, m.filter.Status, 1)]
	m.refresh(m.selectedID())
}

// nextIndex returns the index step positions after current in options,
// wrapping. An unknown current value restarts from the first option.
func nextIndex[T comparable](options []T, current T, step int) int {
	for i, o := range options {
		if o == current {
			n := len(options)
			return ((i+step)%n + n) % n
		}
	}
	return 0
}

// reorder swaps the selected feature with its neighbour in the same group.
func (m *BoardModel) reorder(step int) {
	f, ok := m.Selected()
	if !ok {
		return
	}
	j := m.cursor + step
	if j < 0 || j >= len(m.items) || m.items[j].PhaseID != f.PhaseID {
		return
	}
	neighbour := m.items[j].ID

	from, to := -1, -1
	for i, g := range m.state.OrderedFeatures() {
		switch g.ID {
		case f.ID:
			from = i
		case neighbour:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return
	}
	m.apply(f.ID, m.state.MoveFeature(f.ID, to-from))
}

// shiftPhase moves the selected feature to the previous or next phase.
// Unassigned features move into the first phase.
func (m *BoardModel) shiftPhase(step int) {
	f, ok := m.Selected()
	if !ok {
		return
	}
	phases := workbench.OrderedPhases(m.state.Doc())
	if len(phases) == 0 {
		return
	}
	current := -1
	for i, p := range phases {
		if p.ID == f.PhaseID {
			current = i
			break
		}
	}
	target := 0
	if current >= 0 {
		target = current + step
	}
	if target < 0 || target >= len(phases) || target == current {
		return
	}
	if err := m.state.MoveToPhase(f.ID, phases[target].ID); err != nil {
		m.setNotice(errorText(err), true)
		return
	}
	if m.filter.PhaseID != "" && m.filter.PhaseID != phases[target].ID {
		m.setNotice(fmt.Sprintf("Moved %q to %s", f.Title, phases[target].Name), false)
	}
	m.refresh(f.ID)
}

func (m BoardModel) selectedID() string {
	if f, ok := m.Selected(); ok {
		return f.ID
	}
	return ""
}

func (m *BoardModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// refresh rebuilds the visible items from state and keeps the cursor on id
// when it is still visible.
func (m *BoardModel) refresh(id string) {
	doc := m.state.Doc()
	if _, ok := doc.Phase(m.filter.PhaseID); !ok {
		m.filter.PhaseID = ""
	}
	visible := m.filter.Apply(m.state.OrderedFeatures())

	m.items = make([]workbench.Feature, 0, len(visible))
	m.rows = make([]boardRow, 0, len(visible)+len(doc.Phases)+1)
	for _, g := range workbench.GroupByPhase(doc, visible) {
		if len(g.Features) == 0 && !m.showEmptyGroup(g) {
			continue
		}
		m.rows = append(m.rows, boardRow{group: g, item: -1})
		for _, f := range g.Features {
			m.rows = append(m.rows, boardRow{item: len(m.items)})
			m.items = append(m.items, f)
		}
	}

	found := false
	for i, f := range m.items {
		if f.ID == id && id != "" {
			m.cursor = i
			found = true
			break
		}
	}
	if !found {
		m.cursor = min(m.cursor, len(m.items)-1)
		m.cursor = max(m.cursor, 0)
	}
	m.layout()
}

// showEmptyGroup reports whether an empty phase still gets a heading: only
// when nothing is filtering it out.
func (m BoardModel) showEmptyGroup(g workbench.Group) bool {
	if m.filter.PhaseID != "" {
		return g.Phase != nil && g.Phase.ID == m.filter.PhaseID
	}
	return m.filter.IsZero()
}

func errorText(err error) string {
	switch {
	case errors.Is(err, workbench.ErrEmptyTitle):
		return "Name can't be empty"
	case errors.Is(err, workbench.ErrPhaseNotFound):
		return "That phase no longer exists"
	default:
		return err.Error()
	}
}
