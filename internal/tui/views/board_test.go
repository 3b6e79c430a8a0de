package views

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/workbench/internal/app"
	"github.com/pablasso/workbench/internal/persist"
	"github.com/pablasso/workbench/internal/store"
	"github.com/pablasso/workbench/internal/testutil"
	"github.com/pablasso/workbench/internal/tui/msgs"
	"github.com/pablasso/workbench/internal/workbench"
)

// failingKV starts failing writes once fail is set.
type failingKV struct {
	*store.MemoryKV
	fail bool
}

func (f *failingKV) Set(key, value string) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryKV.Set(key, value)
}

func newTestBoard(t *testing.T, kv store.KV) (BoardModel, *app.State) {
	t.Helper()
	state := testutil.NewState(t, kv)

	m := NewBoardModel(state)
	m.SetSize(100, 30)
	return m, state
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m BoardModel, keys ...string) BoardModel {
	for _, k := range keys {
		m, _ = m.Update(keyMsg(k))
	}
	return m
}

func titles(features []workbench.Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.Title
	}
	return out
}

func selectedTitle(t *testing.T, m BoardModel) string {
	t.Helper()
	f, ok := m.Selected()
	if !ok {
		t.Fatal("expected a selected feature")
	}
	return f.Title
}

func phaseID(t *testing.T, state *app.State, name string) string {
	t.Helper()
	p, err := state.Doc().ResolvePhase(name)
	if err != nil {
		t.Fatalf("phase %q: %v", name, err)
	}
	return p.ID
}

func TestNewBoardModel_ShowsSeed(t *testing.T) {
	m, _ := newTestBoard(t, nil)

	want := []string{"Document model", "Local persistence", "Quick edit"}
	if got := titles(m.Items()); !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if got := selectedTitle(t, m); got != "Document model" {
		t.Errorf("selected = %q, want first feature", got)
	}

	view := m.View()
	for _, want := range []string{"Feature Workbench", "3 features", "1/3 done", "Foundation (2)", "Polish (1)", "#core #storage"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestBoardModel_View_EmptyBeforeSize(t *testing.T) {
	if view := NewBoardModel(testutil.NewState(t, nil)).View(); view != "" {
		t.Errorf("expected empty view before sizing, got %q", view)
	}
}

func TestBoardModel_Navigation(t *testing.T) {
	m, _ := newTestBoard(t, nil)

	m = press(m, "down", "j", "down")
	if got := selectedTitle(t, m); got != "Quick edit" {
		t.Errorf("selected = %q, want cursor clamped at last feature", got)
	}

	m = press(m, "up")
	if got := selectedTitle(t, m); got != "Local persistence" {
		t.Errorf("selected = %q after up", got)
	}

	m = press(m, "k", "k", "k")
	if got := selectedTitle(t, m); got != "Document model" {
		t.Errorf("selected = %q, want cursor clamped at first feature", got)
	}
}

func TestBoardModel_CycleStatus(t *testing.T) {
	m, state := newTestBoard(t, nil)

	m = press(m, "down", " ")

	f, _ := m.Selected()
	stored, ok := state.Doc().Feature(f.ID)
	if !ok {
		t.Fatal("selected feature missing from document")
	}
	if stored.Status != workbench.StatusDone {
		t.Errorf("status = %q, want done after in_progress", stored.Status)
	}
	if !strings.Contains(m.View(), "2/3 done") {
		t.Error("expected progress to update")
	}
}

func TestBoardModel_PhaseFilter(t *testing.T) {
	m, state := newTestBoard(t, nil)
	foundation := phaseID(t, state, "Foundation")
	polish := phaseID(t, state, "Polish")

	m = press(m, "tab")
	if m.Filter().PhaseID != foundation {
		t.Fatalf("phase filter = %q, want Foundation", m.Filter().PhaseID)
	}
	if got := len(m.Items()); got != 2 {
		t.Errorf("expected 2 Foundation features, got %d", got)
	}
	if strings.Contains(m.View(), "Polish (") {
		t.Error("expected other phases to be hidden")
	}

	m = press(m, "tab")
	if m.Filter().PhaseID != polish {
		t.Errorf("phase filter = %q, want Polish", m.Filter().PhaseID)
	}
	if got := titles(m.Items()); !reflect.DeepEqual(got, []string{"Quick edit"}) {
		t.Errorf("items = %v", got)
	}

	m = press(m, "tab")
	if m.Filter().PhaseID != "" {
		t.Errorf("expected filter to wrap to all phases, got %q", m.Filter().PhaseID)
	}

	m = press(m, "shift+tab")
	if m.Filter().PhaseID != polish {
		t.Errorf("shift+tab should go back to Polish, got %q", m.Filter().PhaseID)
	}
}

func TestBoardModel_StatusFilter(t *testing.T) {
	m, _ := newTestBoard(t, nil)

	m = press(m, "s")
	if m.Filter().Status != workbench.StatusNotStarted {
		t.Fatalf("status filter = %q", m.Filter().Status)
	}
	if got := titles(m.Items()); !reflect.DeepEqual(got, []string{"Quick edit"}) {
		t.Errorf("items = %v", got)
	}

	m = press(m, "s", "s", "s")
	if m.Filter().Status != workbench.StatusBlocked {
		t.Errorf("status filter = %q, want blocked", m.Filter().Status)
	}
	if len(m.Items()) != 0 {
		t.Errorf("expected no blocked features, got %v", titles(m.Items()))
	}
	if !strings.Contains(m.View(), "No features match") {
		t.Error("expected empty-state hint")
	}

	m = press(m, "s")
	if m.Filter().Status != "" {
		t.Errorf("expected status filter to wrap to all, got %q", m.Filter().Status)
	}
}

func TestBoardModel_Search(t *testing.T) {
	m, _ := newTestBoard(t, nil)

	m = press(m, "/")
	if m.Mode() != ModeSearch {
		t.Fatalf("mode = %v, want search", m.Mode())
	}

	// Typing filters live, and "q" is text rather than quit.
	m = press(m, "q")
	if m.Mode() != ModeSearch {
		t.Fatal("typing q should not leave search")
	}
	m = press(m, "uick")
	if got := titles(m.Items()); !reflect.DeepEqual(got, []string{"Quick edit"}) {
		t.Errorf("items = %v", got)
	}

	m = press(m, "enter")
	if m.Mode() != ModeBrowse {
		t.Errorf("mode = %v after enter", m.Mode())
	}
	if m.Filter().Text != "quick" {
		t.Errorf("search text = %q", m.Filter().Text)
	}

	m = press(m, "esc")
	if !m.Filter().IsZero() {
		t.Errorf("esc should clear filters, got %+v", m.Filter())
	}
	if len(m.Items()) != 3 {
		t.Errorf("expected all features back, got %d", len(m.Items()))
	}
}

func TestBoardModel_SearchEscClearsText(t *testing.T) {
	m, _ := newTestBoard(t, nil)

	m = press(m, "/", "storage", "esc")
	if m.Mode() != ModeBrowse {
		t.Errorf("mode = %v", m.Mode())
	}
	if m.Filter().Text != "" {
		t.Errorf("search text = %q, want cleared", m.Filter().Text)
	}
}

func TestBoardModel_EditTitle(t *testing.T) {
	m, state := newTestBoard(t, nil)

	m = press(m, "e")
	if m.Mode() != ModeEditTitle {
		t.Fatalf("mode = %v", m.Mode())
	}
	if m.input.Value() != "Document model" {
		t.Errorf("input prefilled with %q", m.input.Value())
	}

	m = press(m, "s", "enter")
	if got := selectedTitle(t, m); got != "Document models" {
		t.Errorf("selected title = %q", got)
	}
	f, _ := m.Selected()
	if stored, _ := state.Doc().Feature(f.ID); stored.Title != "Document models" {
		t.Errorf("stored title = %q", stored.Title)
	}
}

func TestBoardModel_EditTitle_Empty(t *testing.T) {
	m, state := newTestBoard(t, nil)

	m = press(m, "e")
	m.input.SetValue("   ")
	m = press(m, "enter")

	if m.Notice() != "Name can't be empty" {
		t.Errorf("notice = %q", m.Notice())
	}
	if got := workbench.OrderedFeatures(state.Doc())[0].Title; got != "Document model" {
		t.Errorf("title changed to %q", got)
	}
}

func TestBoardModel_RenameDocument(t *testing.T) {
	m, state := newTestBoard(t, nil)

	m = press(m, "T")
	if m.Mode() != ModeRenameDoc {
		t.Fatalf("mode = %v", m.Mode())
	}
	if m.input.Value() != "Feature Workbench" {
		t.Errorf("input prefilled with %q", m.input.Value())
	}

	m.input.SetValue("  Launch plan ")
	m = press(m, "enter")
	if m.Mode() != ModeBrowse {
		t.Errorf("mode = %v", m.Mode())
	}
	if got := state.Doc().Title; got != "Launch plan" {
		t.Errorf("title = %q", got)
	}
	if !strings.Contains(m.View(), "Launch plan") {
		t.Error("expected the header to show the new title")
	}

	m = press(m, "T")
	m.input.SetValue("")
	m = press(m, "enter")
	if m.Notice() != "Name can't be empty" {
		t.Errorf("notice = %q", m.Notice())
	}
	if got := state.Doc().Title; got != "Launch plan" {
		t.Errorf("title changed to %q", got)
	}
}

func TestBoardModel_EditCancel(t *testing.T) {
	m, state := newTestBoard(t, nil)
	before := state.Doc()

	m = press(m, "e", "xyz", "esc")
	if m.Mode() != ModeBrowse {
		t.Errorf("mode = %v", m.Mode())
	}
	if !reflect.DeepEqual(state.Doc(), before) {
		t.Error("cancelled edit changed the document")
	}
}

func TestBoardModel_EditTags(t *testing.T) {
	m, state := newTestBoard(t, nil)

	m = press(m, "down", "t")
	if m.input.Value() != "core, storage" {
		t.Errorf("input prefilled with %q", m.input.Value())
	}

	m.input.SetValue("Storage, Disk IO,")
	m = press(m, "enter")

	f, _ := m.Selected()
	stored, _ := state.Doc().Feature(f.ID)
	if want := []string{"storage", "disk-io"}; !reflect.DeepEqual(stored.Tags, want) {
		t.Errorf("tags = %v, want %v", stored.Tags, want)
	}
}

func TestBoardModel_NewFeature(t *testing.T) {
	m, state := newTestBoard(t, nil)

	m = press(m, "n", "Search", "enter")

	if got := selectedTitle(t, m); got != "Search" {
		t.Fatalf("selected = %q, want the new feature", got)
	}
	f, _ := m.Selected()
	if f.PhaseID != phaseID(t, state, "Foundation") {
		t.Errorf("new feature should join the selected feature's phase")
	}
	if f.Status != workbench.StatusNotStarted {
		t.Errorf("status = %q", f.Status)
	}
	if m.Notice() != `Added "Search"` {
		t.Errorf("notice = %q", m.Notice())
	}
	if len(state.Doc().Features) != 4 {
		t.Errorf("expected 4 features, got %d", len(state.Doc().Features))
	}
}

func TestBoardModel_NewFeature_UsesPhaseFilter(t *testing.T) {
	m, state := newTestBoard(t, nil)

	m = press(m, "tab", "tab", "n", "Theme", "enter")

	f, _ := m.Selected()
	if f.Title != "Theme" || f.PhaseID != phaseID(t, state, "Polish") {
		t.Errorf("expected Theme in Polish, got %q in %q", f.Title, f.PhaseID)
	}
}

func TestBoardModel_NewFeature_NoPhases(t *testing.T) {
	m, state := newTestBoard(t, nil)
	if err := state.Replace(workbench.Doc{Version: workbench.CurrentVersion, Title: "Empty"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	m = press(m, "R")

	m = press(m, "n")
	if m.Mode() != ModeBrowse {
		t.Errorf("mode = %v, want browse", m.Mode())
	}
	if m.Notice() != "Add a phase first (p)" {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestBoardModel_NewPhase(t *testing.T) {
	m, state := newTestBoard(t, nil)

	m = press(m, "p", "Launch", "enter")

	if len(state.Doc().Phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(state.Doc().Phases))
	}
	if !strings.Contains(m.View(), "Launch (empty)") {
		t.Error("expected the empty phase to be listed")
	}
}

func TestBoardModel_Reorder(t *testing.T) {
	m, _ := newTestBoard(t, nil)

	m = press(m, "down", "K")
	want := []string{"Local persistence", "Document model", "Quick edit"}
	if got := titles(m.Items()); !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if got := selectedTitle(t, m); got != "Local persistence" {
		t.Errorf("selection should follow the moved feature, got %q", got)
	}

	m = press(m, "J")
	want = []string{"Document model", "Local persistence", "Quick edit"}
	if got := titles(m.Items()); !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestBoardModel_Reorder_StaysInGroup(t *testing.T) {
	m, state := newTestBoard(t, nil)
	before := state.Doc()

	// Quick edit is alone in Polish; its neighbour above is in Foundation.
	m = press(m, "down", "down", "K", "J")

	if !reflect.DeepEqual(state.Doc(), before) {
		t.Error("reorder across groups should be a no-op")
	}
}

func TestBoardModel_ShiftPhase(t *testing.T) {
	m, state := newTestBoard(t, nil)
	polish := phaseID(t, state, "Polish")

	m = press(m, "]")
	f, _ := m.Selected()
	if f.Title != "Document model" || f.PhaseID != polish {
		t.Fatalf("expected Document model in Polish, got %q in %q", f.Title, f.PhaseID)
	}
	if !strings.Contains(m.View(), "Polish (2)") {
		t.Error("expected Polish to list two features")
	}

	m = press(m, "]")
	if f, _ := m.Selected(); f.PhaseID != polish {
		t.Error("moving past the last phase should be a no-op")
	}

	m = press(m, "[")
	if f, _ := m.Selected(); f.PhaseID != phaseID(t, state, "Foundation") {
		t.Error("expected feature back in Foundation")
	}
}

func TestBoardModel_Delete(t *testing.T) {
	m, state := newTestBoard(t, nil)

	m = press(m, "d")
	if m.Mode() != ModeConfirmDelete {
		t.Fatalf("mode = %v", m.Mode())
	}
	if !strings.Contains(m.View(), `Delete "Document model"? y/n`) {
		t.Error("expected confirmation prompt")
	}

	m = press(m, "n")
	if m.Notice() != "Delete cancelled" || len(state.Doc().Features) != 3 {
		t.Fatalf("expected cancel, notice %q, %d features", m.Notice(), len(state.Doc().Features))
	}

	m = press(m, "d", "y")
	if len(state.Doc().Features) != 2 {
		t.Errorf("expected 2 features, got %d", len(state.Doc().Features))
	}
	if got := titles(m.Items()); !reflect.DeepEqual(got, []string{"Local persistence", "Quick edit"}) {
		t.Errorf("items = %v", got)
	}
	if m.Notice() != `Deleted "Document model"` {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestBoardModel_ExternalChangeAndReload(t *testing.T) {
	kv := store.NewMemoryKV()
	m, state := newTestBoard(t, kv)

	m, _ = m.Update(msgs.StorageChangedMsg{})
	if !m.ExternalChange() {
		t.Fatal("expected external change flag")
	}
	if !strings.Contains(m.View(), "Changed elsewhere") {
		t.Error("expected status bar warning")
	}

	other := state.Doc()
	other.Title = "Edited elsewhere"
	data, err := workbench.Encode(other)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := kv.Set(persist.DocKey, string(data)); err != nil {
		t.Fatalf("set: %v", err)
	}

	m = press(m, "R")
	if m.ExternalChange() {
		t.Error("reload should clear the external change flag")
	}
	if state.Doc().Title != "Edited elsewhere" {
		t.Errorf("title = %q", state.Doc().Title)
	}
	if !strings.Contains(m.View(), "Edited elsewhere") {
		t.Error("expected header to show the reloaded title")
	}
}

func TestBoardModel_ReloadWithoutDocument(t *testing.T) {
	kv := store.NewMemoryKV()
	m, state := newTestBoard(t, kv)
	if err := kv.Set(persist.DocKey, "{broken"); err != nil {
		t.Fatalf("set: %v", err)
	}

	m = press(m, "R")
	if !strings.HasPrefix(m.Notice(), "Nothing usable in storage") {
		t.Errorf("notice = %q", m.Notice())
	}
	if state.Doc().Title != "Feature Workbench" {
		t.Error("current document should be kept")
	}
}

func TestBoardModel_SaveFailure(t *testing.T) {
	kv := &failingKV{MemoryKV: store.NewMemoryKV()}
	m, state := newTestBoard(t, kv)

	kv.fail = true
	m = press(m, " ")

	if state.SaveError() == nil {
		t.Fatal("expected a save error")
	}
	if !strings.Contains(m.View(), "Not saved") {
		t.Error("expected status bar to show the failed save")
	}

	// The board keeps working and the next good save clears the warning.
	kv.fail = false
	m = press(m, " ")
	if strings.Contains(m.View(), "Not saved") {
		t.Error("expected warning to clear after a successful save")
	}
}

func TestBoardModel_ReloadClearsSaveFailure(t *testing.T) {
	kv := &failingKV{MemoryKV: store.NewMemoryKV()}
	m, _ := newTestBoard(t, kv)

	kv.fail = true
	m = press(m, " ")
	if !strings.Contains(m.View(), "Not saved") {
		t.Fatal("expected status bar to show the failed save")
	}

	kv.fail = false
	m = press(m, "R")
	if strings.Contains(m.View(), "Not saved") {
		t.Error("expected reload to clear the save warning")
	}
}

func TestBoardModel_Orphans(t *testing.T) {
	m, state := newTestBoard(t, nil)
	doc := workbench.Doc{
		Version: workbench.CurrentVersion,
		Title:   "Orphans",
		Phases:  []workbench.Phase{{ID: "ph-alpha", Name: "Alpha", Order: 1}},
		Features: []workbench.Feature{
			{ID: "ft-lost", Title: "Lost", Status: workbench.StatusNotStarted, PhaseID: "ph-gone", Order: 1},
		},
	}
	if err := state.Replace(doc); err != nil {
		t.Fatalf("replace: %v", err)
	}
	m = press(m, "R")

	view := m.View()
	if !strings.Contains(view, "Unassigned (1)") || !strings.Contains(view, "Alpha (empty)") {
		t.Errorf("expected orphan group after phases, got:\n%s", view)
	}

	m = press(m, "]")
	if f, _ := state.Doc().Feature("ft-lost"); f.PhaseID != "ph-alpha" {
		t.Errorf("expected orphan to move into the first phase, got %q", f.PhaseID)
	}
}

func TestBoardModel_Quit(t *testing.T) {
	m, _ := newTestBoard(t, nil)

	for _, k := range []string{"q", "ctrl+c"} {
		msg := keyMsg(k)
		if k == "ctrl+c" {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestBoardModel_Scrolls(t *testing.T) {
	m, state := newTestBoard(t, nil)
	for i := 0; i < 30; i++ {
		if _, err := state.AddFeature(workbench.NewFeature{Title: "Extra", PhaseID: phaseID(t, state, "Polish")}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	m = press(m, "R")
	m.SetSize(80, 15)

	for i := 0; i < 32; i++ {
		m = press(m, "down")
	}
	view := m.View()
	if got := len(strings.Split(view, "\n")); got != 15 {
		t.Errorf("expected 15 lines, got %d", got)
	}
	if !strings.Contains(view, "›") {
		t.Error("expected the selected row to stay visible")
	}
}
