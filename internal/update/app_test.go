package update

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jingm4128/mcadence/internal/ai"
	"github.com/jingm4128/mcadence/internal/clock"
	"github.com/jingm4128/mcadence/internal/model"
	"github.com/jingm4128/mcadence/internal/scheduler"
	"github.com/jingm4128/mcadence/internal/storage"
)

// Wednesday, 2026-01-14 10:30 in New York, weeks starting Monday.
func testClock(t *testing.T) *clock.Clock {
	t.Helper()
	at := time.Date(2026, time.January, 14, 10, 30, 0, 0, time.UTC)
	c, err := clock.NewFixed("America/New_York", 1, at)
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	return c
}

// newTestModel runs without a store, saver, or engine; every dispatch path
// tolerates their absence.
func newTestModel(t *testing.T, initial model.AppState) Model {
	t.Helper()
	m := NewModel(Runtime{
		Clock:    testClock(t),
		Settings: storage.DefaultSettings(),
		Initial:  initial,
	})
	counter := 0
	m.newID = func() string {
		counter++
		return fmt.Sprintf("test-%d", counter)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("update returned %T", next)
	}
	return out
}

func checklist(id, title string) model.Item {
	created := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	return model.Item{
		ID:        id,
		Tab:       model.TabDayToDay,
		Title:     title,
		Status:    model.StatusActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func tracked(id, title string) model.Item {
	item := checklist(id, title)
	item.Tab = model.TabSpendMyTime
	item.RequiredMinutes = 120
	return item
}

func TestNewModelReconcilesHydratedState(t *testing.T) {
	stale := checklist("a", "gym-20260113")
	stale.BaseTitle = "gym"
	stale.PeriodKey = "20260113"
	stale.Recurrence = &model.Recurrence{
		Frequency: model.FrequencyDaily,
		Timezone:  "America/New_York",
		StartDate: stale.CreatedAt,
	}

	m := newTestModel(t, model.AppState{Items: []model.Item{stale}})

	var missed, spawned bool
	for _, item := range m.State.Items {
		switch {
		case item.ID == "a":
			missed = item.Status == model.StatusMissed
		case item.Title == "gym-20260114":
			spawned = true
		}
	}
	if !missed {
		t.Fatalf("stale occurrence not marked missed: %+v", m.State.Items)
	}
	if !spawned {
		t.Fatalf("current occurrence not spawned: %+v", m.State.Items)
	}
}

func TestNewModelFallsBackToFirstTab(t *testing.T) {
	m := NewModel(Runtime{Clock: testClock(t), ActiveTab: model.Tab("bogus")})
	if m.ActiveTab != model.TabDayToDay {
		t.Fatalf("active tab = %s", m.ActiveTab)
	}
}

func TestTabSwitchKeysResetTheCursor(t *testing.T) {
	st := model.AppState{Items: []model.Item{checklist("a", "one"), checklist("b", "two")}}
	m := newTestModel(t, st)
	m.Cursor = 1

	m = press(t, m, keyRunes("3"))
	if m.ActiveTab != model.TabSpendMyTime || m.Cursor != 0 {
		t.Fatalf("tab = %s, cursor = %d", m.ActiveTab, m.Cursor)
	}
	m = press(t, m, keyRunes("2"))
	if m.ActiveTab != model.TabHitMyGoal {
		t.Fatalf("tab = %s", m.ActiveTab)
	}
}

func TestQuickAddCaptureFlow(t *testing.T) {
	m := newTestModel(t, model.EmptyState())

	m = press(t, m, keyRunes("a"))
	if !m.CaptureMode {
		t.Fatalf("capture mode not entered")
	}

	m = press(t, m, keyRunes("water plants"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.CaptureMode {
		t.Fatalf("capture mode not exited")
	}
	if len(m.State.Items) != 1 || m.State.Items[0].Title != "water plants" {
		t.Fatalf("items = %+v", m.State.Items)
	}
	if len(m.State.Actions) != 1 || m.State.Actions[0].Type != model.ActionCreate {
		t.Fatalf("audit log = %+v", m.State.Actions)
	}
}

func TestQuickAddEscCancels(t *testing.T) {
	m := newTestModel(t, model.EmptyState())
	m = press(t, m, keyRunes("a"))
	m = press(t, m, keyRunes("half typed"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.CaptureMode || len(m.State.Items) != 0 {
		t.Fatalf("cancelled capture still added: %+v", m.State.Items)
	}
}

func TestQuickAddFrequencyPrefixMakesRecurring(t *testing.T) {
	m := newTestModel(t, model.EmptyState())
	m = press(t, m, keyRunes("a"))
	m = press(t, m, keyRunes("daily gym"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.State.Items) != 1 {
		t.Fatalf("items = %+v", m.State.Items)
	}
	item := m.State.Items[0]
	if item.Title != "gym-20260114" || item.BaseTitle != "gym" || item.PeriodKey != "20260114" {
		t.Fatalf("recurring item = %+v", item)
	}
	if item.Recurrence == nil || item.Recurrence.Frequency != model.FrequencyDaily {
		t.Fatalf("recurrence = %+v", item.Recurrence)
	}
}

func TestSpaceTogglesChecklistAndLogsIt(t *testing.T) {
	m := newTestModel(t, model.AppState{Items: []model.Item{checklist("a", "water plants")}})

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.State.Items[0].IsDone || m.State.Items[0].Status != model.StatusDone {
		t.Fatalf("item = %+v", m.State.Items[0])
	}
	if len(m.State.Actions) != 1 || m.State.Actions[0].Type != model.ActionComplete {
		t.Fatalf("audit log = %+v", m.State.Actions)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.State.Items[0].IsDone {
		t.Fatalf("untoggle failed: %+v", m.State.Items[0])
	}
}

func TestTimerKeyStartsAndStops(t *testing.T) {
	st := model.AppState{Items: []model.Item{tracked("a", "reading")}}
	m := newTestModel(t, st)
	m.ActiveTab = model.TabSpendMyTime

	m = press(t, m, keyRunes("s"))
	if !m.State.Items[0].IsRunning() {
		t.Fatalf("timer not started: %+v", m.State.Items[0])
	}
	if len(m.State.Actions) != 1 || m.State.Actions[0].Type != model.ActionTimerStart {
		t.Fatalf("audit log = %+v", m.State.Actions)
	}

	// Same instant, so the session credits nothing but must still close.
	m = press(t, m, keyRunes("s"))
	if m.State.Items[0].IsRunning() || m.State.Items[0].CompletedMinutes != 0 {
		t.Fatalf("timer not stopped cleanly: %+v", m.State.Items[0])
	}
}

func TestDeleteKeyIsSoft(t *testing.T) {
	m := newTestModel(t, model.AppState{Items: []model.Item{checklist("a", "one")}})

	m = press(t, m, keyRunes("d"))
	if !m.State.Items[0].IsDeleted {
		t.Fatalf("item not deleted: %+v", m.State.Items[0])
	}
	if len(m.VisibleItems()) != 0 {
		t.Fatalf("deleted item still visible")
	}
}

func TestPaletteAddCommand(t *testing.T) {
	m := newTestModel(t, model.EmptyState())

	m = press(t, m, keyRunes("/"))
	if !m.Palette.Active {
		t.Fatalf("palette not opened")
	}
	m = press(t, m, keyRunes("add spendMyTime practice piano"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Palette.Active {
		t.Fatalf("palette not closed after execution")
	}
	if len(m.State.Items) != 1 {
		t.Fatalf("items = %+v", m.State.Items)
	}
	item := m.State.Items[0]
	if item.Tab != model.TabSpendMyTime || item.Title != "practice piano" || item.RequiredMinutes != 120 {
		t.Fatalf("item = %+v", item)
	}
}

func TestPaletteUnknownCommandReportsError(t *testing.T) {
	m := newTestModel(t, model.EmptyState())
	m = press(t, m, keyRunes("/"))
	m = press(t, m, keyRunes("frobnicate"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unsupported") {
		t.Fatalf("status = %+v", m.Status)
	}
}

func TestPaletteDoneRejectsTrackedItems(t *testing.T) {
	m := newTestModel(t, model.AppState{Items: []model.Item{tracked("a", "reading")}})
	m = press(t, m, keyRunes("/"))
	m = press(t, m, keyRunes("done reading"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Status.IsError {
		t.Fatalf("status = %+v", m.Status)
	}
	if m.State.Items[0].Status != model.StatusActive {
		t.Fatalf("tracked item mutated: %+v", m.State.Items[0])
	}
}

func TestPaletteUnarchiveRestoresItem(t *testing.T) {
	archived := checklist("a", "one")
	archived.IsArchived = true
	at := archived.CreatedAt
	archived.ArchivedAt = &at
	m := newTestModel(t, model.AppState{Items: []model.Item{archived}})

	if len(m.VisibleItems()) != 0 {
		t.Fatalf("archived item should be hidden")
	}

	m = press(t, m, keyRunes("/"))
	m = press(t, m, keyRunes("unarchive one"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.State.Items[0].IsArchived {
		t.Fatalf("item still archived: %+v", m.State.Items[0])
	}
	if len(m.VisibleItems()) != 1 {
		t.Fatalf("restored item not visible")
	}
}

func TestPaletteResetClearsEverything(t *testing.T) {
	m := newTestModel(t, model.AppState{Items: []model.Item{checklist("a", "one")}})
	m.SummaryMarkdown = "old summary"

	m = press(t, m, keyRunes("/"))
	m = press(t, m, keyRunes("reset"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.State.Items) != 0 || m.SummaryMarkdown != "" {
		t.Fatalf("reset incomplete: %+v", m.State)
	}
}

func TestPendingProposalsApproval(t *testing.T) {
	m := newTestModel(t, model.EmptyState())
	m.PendingProposals = []ai.ItemProposal{
		{Tab: model.TabDayToDay, Title: "water plants"},
		{Tab: model.TabSpendMyTime, Title: "reading", RequiredMinutes: 60},
	}

	m = press(t, m, keyRunes("y"))
	if len(m.State.Items) != 2 || m.PendingProposals != nil {
		t.Fatalf("approval failed: items=%d pending=%v", len(m.State.Items), m.PendingProposals)
	}
}

func TestPendingSuggestionsDiscard(t *testing.T) {
	m := newTestModel(t, model.AppState{Items: []model.Item{checklist("a", "one")}})
	m.PendingSuggestions = []ai.CleanupSuggestion{{ItemID: "a", Action: "delete"}}

	m = press(t, m, keyRunes("n"))
	if m.PendingSuggestions != nil {
		t.Fatalf("suggestions not discarded")
	}
	if m.State.Items[0].IsDeleted {
		t.Fatalf("discard must not apply the suggestion")
	}
}

func TestRolloverMsgTriggersReconciliation(t *testing.T) {
	m := newTestModel(t, model.EmptyState())

	// Inject a stale occurrence behind the shell's back, the way a period
	// elapsing at runtime leaves one.
	stale := checklist("a", "gym-20260113")
	stale.BaseTitle = "gym"
	stale.PeriodKey = "20260113"
	stale.Recurrence = &model.Recurrence{
		Frequency: model.FrequencyDaily,
		Timezone:  "America/New_York",
		StartDate: stale.CreatedAt,
	}
	m.State.Items = append(m.State.Items, stale)

	m = press(t, m, RolloverMsg{Event: scheduler.RolloverEvent{BaseTitle: "gym", PeriodKey: "20260113"}})

	if m.State.Items[0].Status != model.StatusMissed {
		t.Fatalf("stale occurrence not marked missed: %+v", m.State.Items[0])
	}
	found := false
	for _, item := range m.State.Items {
		if item.Title == "gym-20260114" {
			found = true
		}
	}
	if !found {
		t.Fatalf("current occurrence not spawned: %+v", m.State.Items)
	}
}

func TestAIKeysWithoutClientReportMissingKey(t *testing.T) {
	m := newTestModel(t, model.EmptyState())
	m = press(t, m, keyRunes("S"))
	if !m.Status.IsError {
		t.Fatalf("status = %+v", m.Status)
	}
}

func TestSummaryMsgStoresMarkdown(t *testing.T) {
	m := newTestModel(t, model.EmptyState())
	m = press(t, m, SummaryMsg{Markdown: "## a good week"})
	if m.SummaryMarkdown != "## a good week" {
		t.Fatalf("summary = %q", m.SummaryMarkdown)
	}

	m = press(t, m, SummaryMsg{Err: ai.ErrRateLimited})
	if !m.Status.IsError {
		t.Fatalf("status = %+v", m.Status)
	}
}

func TestQuitKeyReturnsQuitCmd(t *testing.T) {
	m := newTestModel(t, model.EmptyState())
	next, cmd := m.Update(keyRunes("q"))
	if !next.(Model).Quitting {
		t.Fatalf("quitting flag not set")
	}
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestViewRendersWithoutPanicking(t *testing.T) {
	st := model.AppState{Items: []model.Item{checklist("a", "one"), tracked("b", "reading")}}
	m := newTestModel(t, st)
	m.HelpVisible = true
	out := m.View()
	if !strings.Contains(out, "mcadence") || !strings.Contains(out, "one") {
		t.Fatalf("view missing content:\n%s", out)
	}
}
