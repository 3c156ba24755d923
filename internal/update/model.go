package update

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/google/uuid"

	"github.com/jingm4128/mcadence/internal/ai"
	"github.com/jingm4128/mcadence/internal/clock"
	"github.com/jingm4128/mcadence/internal/model"
	"github.com/jingm4128/mcadence/internal/scheduler"
	"github.com/jingm4128/mcadence/internal/state"
	"github.com/jingm4128/mcadence/internal/storage"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	DayToDay    string
	HitMyGoal   string
	SpendMyTime string
	Help        string
	Quit        string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// Model is the application shell: it owns the canonical AppState and is the
// only place actions are dispatched from. Every dispatch runs the reducer,
// then the reconciler, then schedules a debounced save.
type Model struct {
	State     model.AppState
	ActiveTab model.Tab
	Cursor    int
	Status    StatusBar

	HelpVisible bool
	Quitting    bool
	CaptureMode bool
	Palette     CommandPaletteState

	// Pending AI output awaiting explicit approval.
	PendingProposals   []ai.ItemProposal
	PendingSuggestions []ai.CleanupSuggestion
	SummaryMarkdown    string

	Keys GlobalKeyMap

	reducer    *state.Reducer
	reconciler *state.Reconciler
	clk        *clock.Clock
	saver      *storage.Debouncer
	store      *storage.Store
	settings   storage.Settings
	engine     *scheduler.Engine
	aiClient   *ai.Client
	newID      func() string

	quickAddInput textinput.Model
	commandInput  textinput.Model
	aiSpinner     spinner.Model
	aiBusy        bool
}

// Runtime bundles the constructed collaborators the shell runs against.
type Runtime struct {
	Clock     *clock.Clock
	Store     *storage.Store
	Saver     *storage.Debouncer
	Engine    *scheduler.Engine
	Settings  storage.Settings
	AIClient  *ai.Client
	Initial   model.AppState
	ActiveTab model.Tab
}

func NewModel(rt Runtime) Model {
	quickAdd := textinput.New()
	quickAdd.Placeholder = "what needs doing?"
	quickAdd.CharLimit = 120
	command := textinput.New()
	command.Placeholder = "/add weekly Water the plants"
	command.CharLimit = 200
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	activeTab := rt.ActiveTab
	if !activeTab.IsValid() {
		activeTab = model.TabDayToDay
	}

	m := Model{
		State:     rt.Initial,
		ActiveTab: activeTab,
		Keys: GlobalKeyMap{
			DayToDay:    "1",
			HitMyGoal:   "2",
			SpendMyTime: "3",
			Help:        "?",
			Quit:        "q",
		},
		reducer:       state.NewReducer(rt.Clock),
		reconciler:    state.NewReconciler(rt.Clock),
		clk:           rt.Clock,
		saver:         rt.Saver,
		store:         rt.Store,
		settings:      rt.Settings,
		engine:        rt.Engine,
		aiClient:      rt.AIClient,
		newID:         uuid.NewString,
		quickAddInput: quickAdd,
		commandInput:  command,
		aiSpinner:     sp,
	}
	// Reconcile whatever was hydrated: missed periods are marked and fresh
	// occurrences spawned before the first frame renders.
	m.dispatch()
	return m
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type AppErrorMsg struct {
	Err error
}

type RolloverMsg struct {
	Event scheduler.RolloverEvent
}

type TimerTickMsg struct{}

type ProposalsMsg struct {
	Proposals []ai.ItemProposal
	Err       error
}

type SuggestionsMsg struct {
	Suggestions []ai.CleanupSuggestion
	Err         error
}

type SummaryMsg struct {
	Markdown string
	Err      error
}

// dispatch applies the actions, runs one reconciliation pass over the
// result, schedules a debounced save, and re-arms period rollover wakeups.
func (m *Model) dispatch(actions ...state.Action) {
	for _, a := range actions {
		m.State = m.reducer.Apply(m.State, a)
	}
	for _, a := range m.reconciler.Reconcile(m.State) {
		m.State = m.reducer.Apply(m.State, a)
	}
	if m.saver != nil {
		m.saver.Save(m.State)
	}
	m.scheduleRollovers()
}

// flushNow persists immediately, for transitions that cannot wait on the
// debounce window (reset, import).
func (m *Model) flushNow() error {
	if m.saver == nil {
		return nil
	}
	return m.saver.SaveImmediate(m.State)
}

func (m *Model) scheduleRollovers() {
	if m.engine == nil {
		return
	}
	for _, item := range m.State.Items {
		if item.IsDeleted || !item.Recurring() {
			continue
		}
		due, err := m.clk.PeriodDueDate(item.PeriodKey)
		if err != nil {
			continue
		}
		_ = m.engine.Schedule(scheduler.RolloverEvent{
			BaseTitle: item.EffectiveBaseTitle(),
			PeriodKey: item.PeriodKey,
			TriggerAt: due,
		})
	}
}

// logEntry appends an audit record alongside the user action it describes.
func (m *Model) logEntry(itemID string, tab model.Tab, actionType model.ActionType, payload map[string]any) state.Action {
	return state.LogAction{Entry: model.ActionEntry{
		ID:        m.newID(),
		ItemID:    itemID,
		Tab:       tab,
		Type:      actionType,
		Timestamp: m.clk.Now(),
		Payload:   payload,
	}}
}

// VisibleItems returns the current tab's live, unarchived items in display
// order.
func (m *Model) VisibleItems() []model.Item {
	items := make([]model.Item, 0)
	for _, item := range m.State.Items {
		if item.Tab != m.ActiveTab || item.IsDeleted || item.IsArchived {
			continue
		}
		items = append(items, item)
	}
	model.SortForDisplay(items)
	return items
}

func (m *Model) itemAtCursor() (model.Item, bool) {
	items := m.VisibleItems()
	if len(items) == 0 {
		return model.Item{}, false
	}
	idx := m.Cursor
	if idx < 0 {
		idx = 0
	}
	if idx >= len(items) {
		idx = len(items) - 1
	}
	return items[idx], true
}

func (m *Model) anyTimerRunning() bool {
	for _, item := range m.State.Items {
		if !item.IsDeleted && item.IsRunning() {
			return true
		}
	}
	return false
}

func (m *Model) clampCursor() {
	n := len(m.VisibleItems())
	if n == 0 {
		m.Cursor = 0
		return
	}
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// newItem builds an item for quick-add on the given tab, attaching a
// period key when a recurrence frequency is requested.
func (m *Model) newItem(title string, tab model.Tab, freq model.Frequency) model.Item {
	now := m.clk.Now()
	item := model.Item{
		ID:        m.newID(),
		Tab:       tab,
		Title:     title,
		SortKey:   m.State.NextSortKey(),
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tab.Kind() == model.KindTracked {
		item.RequiredMinutes = 120
		ws := m.clk.WeekStart(now)
		we := m.clk.WeekEnd(now)
		item.PeriodStart = &ws
		item.PeriodEnd = &we
	}
	if freq.IsValid() {
		key := m.clk.CurrentPeriodKey(freq)
		due, _ := m.clk.PeriodDueDate(key)
		item.BaseTitle = title
		item.Title = model.TitleWithPeriod(title, key)
		item.PeriodKey = key
		item.Recurrence = &model.Recurrence{
			Frequency: freq,
			Timezone:  m.clk.Location().String(),
			StartDate: now,
			NextDue:   due,
		}
	}
	return item
}
