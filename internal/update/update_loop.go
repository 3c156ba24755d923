package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jingm4128/mcadence/internal/ai"
	"github.com/jingm4128/mcadence/internal/model"
	"github.com/jingm4128/mcadence/internal/scheduler"
	"github.com/jingm4128/mcadence/internal/state"
	"github.com/jingm4128/mcadence/internal/views"
)

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.engine != nil {
		cmds = append(cmds, waitForRolloverCmd(m.engine.C()))
	}
	if m.anyTimerRunning() {
		cmds = append(cmds, timerTickCmd())
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		if m.CaptureMode {
			return m.handleCaptureKey(typed), nil
		}
		if len(m.PendingProposals) > 0 || len(m.PendingSuggestions) > 0 {
			if next, handled := m.handlePendingKey(typed); handled {
				return next, nil
			}
		}
		return m.handleListKey(typed)

	case spinner.TickMsg:
		if m.aiBusy {
			var cmd tea.Cmd
			m.aiSpinner, cmd = m.aiSpinner.Update(typed)
			return m, cmd
		}

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case AppErrorMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil

	case RolloverMsg:
		// The period elapsed while the app was running. Dispatching with no
		// actions still runs a reconciliation pass over the current state.
		m.dispatch()
		m.clampCursor()
		m.Status = StatusBar{
			Text:    fmt.Sprintf("period rolled over: %s", typed.Event.BaseTitle),
			IsError: false,
		}
		if m.engine != nil {
			return m, waitForRolloverCmd(m.engine.C())
		}
		return m, nil

	case TimerTickMsg:
		if m.anyTimerRunning() {
			return m, timerTickCmd()
		}
		return m, nil

	case ProposalsMsg:
		m.aiBusy = false
		if typed.Err != nil {
			m.Status = StatusBar{Text: ai.UserMessage(typed.Err), IsError: true}
			return m, nil
		}
		if len(typed.Proposals) == 0 {
			m.Status = StatusBar{Text: "nothing to add from that note", IsError: false}
			return m, nil
		}
		m.PendingProposals = typed.Proposals
		m.Status = StatusBar{
			Text:    fmt.Sprintf("%d proposed item(s): y accept, n discard", len(typed.Proposals)),
			IsError: false,
		}
		return m, nil

	case SuggestionsMsg:
		m.aiBusy = false
		if typed.Err != nil {
			m.Status = StatusBar{Text: ai.UserMessage(typed.Err), IsError: true}
			return m, nil
		}
		if len(typed.Suggestions) == 0 {
			m.Status = StatusBar{Text: "no cleanup suggested", IsError: false}
			return m, nil
		}
		m.PendingSuggestions = typed.Suggestions
		m.Status = StatusBar{
			Text:    fmt.Sprintf("%d cleanup suggestion(s): y accept, n discard", len(typed.Suggestions)),
			IsError: false,
		}
		return m, nil

	case SummaryMsg:
		m.aiBusy = false
		if typed.Err != nil {
			m.Status = StatusBar{Text: ai.UserMessage(typed.Err), IsError: true}
			return m, nil
		}
		m.SummaryMarkdown = typed.Markdown
		m.Status = StatusBar{Text: "weekly summary ready", IsError: false}
		return m, nil
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.Focus()
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active", IsError: false}
		return m, nil
	case m.Keys.DayToDay:
		m.setTab(model.TabDayToDay)
		return m, nil
	case m.Keys.HitMyGoal:
		m.setTab(model.TabHitMyGoal)
		return m, nil
	case m.Keys.SpendMyTime:
		m.setTab(model.TabSpendMyTime)
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "a", "i":
		m.CaptureMode = true
		m.quickAddInput.Focus()
		m.quickAddInput.SetValue("")
		m.Status = StatusBar{Text: "quick add: enter to save, esc to cancel", IsError: false}
		return m, nil
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Cursor < len(m.VisibleItems())-1 {
			m.Cursor++
		}
		return m, nil
	case " ", "enter":
		return m.toggleAtCursor(), nil
	case "s":
		return m.toggleTimerAtCursor(), nil
	case "e":
		return m.archiveAtCursor(), nil
	case "d":
		return m.deleteAtCursor(), nil
	case "S":
		return m.requestSummary()
	case "C":
		return m.requestCleanup()
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		if err := m.flushNow(); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleCaptureKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.CaptureMode = false
		m.quickAddInput.Blur()
		m.quickAddInput.SetValue("")
		m.Status = StatusBar{Text: "quick add cancelled", IsError: false}
		return m
	case "enter":
		title := strings.TrimSpace(m.quickAddInput.Value())
		m.CaptureMode = false
		m.quickAddInput.Blur()
		m.quickAddInput.SetValue("")
		if title == "" {
			return m
		}
		m.addItem(title, m.ActiveTab)
		return m
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(msg)
	_ = cmd
	return m
}

// handlePendingKey resolves y/n on outstanding AI output. Other keys fall
// through to normal list handling.
func (m Model) handlePendingKey(msg tea.KeyMsg) (Model, bool) {
	switch msg.String() {
	case "y":
		now := m.clk.Now()
		if len(m.PendingProposals) > 0 {
			actions := ai.ProposalActions(m.PendingProposals, m.State, now, m.newID)
			m.dispatch(actions...)
			m.Status = StatusBar{Text: fmt.Sprintf("added %d item(s)", len(m.PendingProposals)), IsError: false}
			m.PendingProposals = nil
			return m, true
		}
		actions := ai.CleanupActions(m.PendingSuggestions, m.State, now)
		m.dispatch(actions...)
		m.clampCursor()
		m.Status = StatusBar{Text: fmt.Sprintf("applied %d cleanup action(s)", len(actions)), IsError: false}
		m.PendingSuggestions = nil
		return m, true
	case "n", "esc":
		m.PendingProposals = nil
		m.PendingSuggestions = nil
		m.Status = StatusBar{Text: "discarded", IsError: false}
		return m, true
	}
	return m, false
}

func (m *Model) setTab(tab model.Tab) {
	m.ActiveTab = tab
	m.Cursor = 0
	if m.store != nil {
		_ = m.store.SaveActiveTab(context.Background(), tab)
	}
}

// addItem parses an optional leading frequency word ("daily report" makes a
// recurring item) and dispatches the add plus its audit entry.
func (m *Model) addItem(raw string, tab model.Tab) {
	title := raw
	freq := model.Frequency("")
	if first, rest, found := strings.Cut(raw, " "); found && model.Frequency(strings.ToLower(first)).IsValid() {
		freq = model.Frequency(strings.ToLower(first))
		title = strings.TrimSpace(rest)
	}
	if title == "" {
		m.Status = StatusBar{Text: "title is required", IsError: true}
		return
	}
	item := m.newItem(title, tab, freq)
	m.dispatch(
		state.AddItem{Item: item},
		m.logEntry(item.ID, item.Tab, model.ActionCreate, nil),
	)
	m.Status = StatusBar{Text: fmt.Sprintf("added: %s", item.Title), IsError: false}
}

func (m Model) toggleAtCursor() Model {
	item, ok := m.itemAtCursor()
	if !ok {
		return m
	}
	if item.Tab.Kind() != model.KindChecklist {
		return m.toggleTimerAtCursor()
	}
	now := m.clk.Now()
	m.dispatch(
		state.ToggleChecklist{ID: item.ID, Now: now},
		m.logEntry(item.ID, item.Tab, model.ActionComplete, nil),
	)
	if item.IsDone {
		m.Status = StatusBar{Text: fmt.Sprintf("unchecked: %s", item.Title), IsError: false}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("done: %s", item.Title), IsError: false}
	}
	return m
}

func (m Model) toggleTimerAtCursor() Model {
	item, ok := m.itemAtCursor()
	if !ok || item.Tab.Kind() != model.KindTracked {
		return m
	}
	now := m.clk.Now()
	if item.IsRunning() {
		m.dispatch(
			state.StopTimer{ID: item.ID, Now: now},
			m.logEntry(item.ID, item.Tab, model.ActionTimerStop, map[string]any{
				"sessionStart": item.SessionStart.Format(time.RFC3339),
			}),
		)
		m.Status = StatusBar{Text: fmt.Sprintf("timer stopped: %s", item.Title), IsError: false}
		return m
	}
	m.dispatch(
		state.StartTimer{ID: item.ID, Now: now, AllowConcurrent: m.settings.AllowConcurrentTimers},
		m.logEntry(item.ID, item.Tab, model.ActionTimerStart, nil),
	)
	m.Status = StatusBar{Text: fmt.Sprintf("timer started: %s", item.Title), IsError: false}
	return m
}

func (m Model) archiveAtCursor() Model {
	item, ok := m.itemAtCursor()
	if !ok {
		return m
	}
	now := m.clk.Now()
	m.dispatch(
		state.ArchiveItem{ID: item.ID, Now: now},
		m.logEntry(item.ID, item.Tab, model.ActionArchive, nil),
	)
	m.clampCursor()
	m.Status = StatusBar{Text: fmt.Sprintf("archived: %s", item.Title), IsError: false}
	return m
}

func (m Model) deleteAtCursor() Model {
	item, ok := m.itemAtCursor()
	if !ok {
		return m
	}
	now := m.clk.Now()
	m.dispatch(
		state.DeleteItem{ID: item.ID, Now: now},
		m.logEntry(item.ID, item.Tab, model.ActionDelete, nil),
	)
	m.clampCursor()
	m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s", item.Title), IsError: false}
	return m
}

func (m Model) requestSummary() (tea.Model, tea.Cmd) {
	if m.aiClient == nil {
		m.Status = StatusBar{Text: ai.UserMessage(ai.ErrNoAPIKey), IsError: true}
		return m, nil
	}
	if m.aiBusy {
		return m, nil
	}
	m.aiBusy = true
	m.Status = StatusBar{Text: "generating weekly summary", IsError: false}
	stats := m.currentWeekStats()
	client := m.aiClient
	return m, tea.Batch(m.aiSpinner.Tick, func() tea.Msg {
		md, err := client.Summarize(context.Background(), stats)
		return SummaryMsg{Markdown: md, Err: err}
	})
}

func (m Model) requestCleanup() (tea.Model, tea.Cmd) {
	if m.aiClient == nil {
		m.Status = StatusBar{Text: ai.UserMessage(ai.ErrNoAPIKey), IsError: true}
		return m, nil
	}
	if m.aiBusy {
		return m, nil
	}
	m.aiBusy = true
	m.Status = StatusBar{Text: "looking for stale items", IsError: false}
	stats := m.currentWeekStats()
	client := m.aiClient
	return m, tea.Batch(m.aiSpinner.Tick, func() tea.Msg {
		suggestions, err := client.SuggestCleanup(context.Background(), stats)
		return SuggestionsMsg{Suggestions: suggestions, Err: err}
	})
}

func (m Model) requestParse(text string) (tea.Model, tea.Cmd) {
	if m.aiClient == nil {
		m.Status = StatusBar{Text: ai.UserMessage(ai.ErrNoAPIKey), IsError: true}
		return m, nil
	}
	if m.aiBusy {
		return m, nil
	}
	m.aiBusy = true
	m.Status = StatusBar{Text: "parsing note", IsError: false}
	client := m.aiClient
	return m, tea.Batch(m.aiSpinner.Tick, func() tea.Msg {
		proposals, err := client.ParseText(context.Background(), text)
		return ProposalsMsg{Proposals: proposals, Err: err}
	})
}

func (m Model) currentWeekStats() ai.Stats {
	now := m.clk.Now()
	period := ai.Period{
		Start:    m.clk.WeekStart(now),
		End:      m.clk.WeekEnd(now),
		Label:    "this week",
		Timezone: m.clk.Location().String(),
	}
	return ai.BuildStats(m.State, period, now)
}

func waitForRolloverCmd(ch <-chan scheduler.RolloverEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return RolloverMsg{Event: ev}
	}
}

func timerTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return TimerTickMsg{} })
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	if m.aiBusy {
		status = strings.TrimSpace(status + "  " + m.aiSpinner.View() + " thinking")
	}

	rightPane := views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
	if len(m.PendingProposals) > 0 {
		rightPane += "\n" + m.renderProposalsPane()
	}
	if len(m.PendingSuggestions) > 0 {
		rightPane += "\n" + m.renderSuggestionsPane()
	}
	if m.SummaryMarkdown != "" {
		rightPane += "\n" + views.RenderSummaryPanel(m.SummaryMarkdown)
	}
	if m.HelpVisible {
		rightPane += "\n" + m.renderHelpPane()
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("mcadence | tab: %s", m.ActiveTab),
		LeftPane:   m.renderTabPane(),
		RightPane:  strings.TrimSpace(rightPane),
		StatusLine: status,
		Footer: fmt.Sprintf("keys: %s/%s/%s tabs | a add | space toggle | s timer | e archive | d delete | / cmd | %s help | %s quit",
			m.Keys.DayToDay, m.Keys.HitMyGoal, m.Keys.SpendMyTime, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderTabPane() string {
	items := m.VisibleItems()
	rows := make([]views.ItemRowData, 0, len(items))
	now := m.clk.Now()
	for i, item := range items {
		row := views.ItemRowData{
			Title:    item.Title,
			Category: model.SubcategoryName(m.State.Categories, item.CategoryID),
			Selected: i == m.Cursor,
			Done:     item.Status == model.StatusDone || item.IsDone,
			Missed:   item.Status == model.StatusMissed,
		}
		if item.Tab.Kind() == model.KindTracked {
			row.Tracked = true
			row.Running = item.IsRunning()
			row.CompletedMinutes = item.CompletedMinutes
			if item.IsRunning() {
				row.CompletedMinutes += int(now.Sub(*item.SessionStart) / time.Minute)
			}
			row.RequiredMinutes = item.RequiredMinutes
			if item.PeriodEnd != nil {
				remaining := item.RequiredMinutes - item.CompletedMinutes
				row.Urgency = string(m.clk.ClassifyUrgency(*item.PeriodEnd, remaining, row.Done))
				row.Due = item.PeriodEnd.Format("Mon 15:04")
			}
		} else if item.Recurrence != nil && !item.Recurrence.NextDue.IsZero() {
			row.Urgency = string(m.clk.ClassifyDeadline(item.Recurrence.NextDue, row.Done))
			row.Due = item.Recurrence.NextDue.Format("Jan 2")
		}
		rows = append(rows, row)
	}
	return views.RenderTabPanel(views.TabPanelData{
		Tab:          string(m.ActiveTab),
		QuickAddView: m.quickAddInput.View(),
		CaptureMode:  m.CaptureMode,
		Rows:         rows,
	})
}

func (m Model) renderProposalsPane() string {
	rows := make([]string, 0, len(m.PendingProposals))
	for _, p := range m.PendingProposals {
		desc := string(p.Tab)
		if p.Frequency.IsValid() {
			desc += ", " + string(p.Frequency)
		}
		if p.RequiredMinutes > 0 {
			desc += fmt.Sprintf(", %dm/week", p.RequiredMinutes)
		}
		rows = append(rows, fmt.Sprintf("%s (%s)", p.Title, desc))
	}
	return views.RenderApprovalPanel("proposed items", rows)
}

func (m Model) renderSuggestionsPane() string {
	rows := make([]string, 0, len(m.PendingSuggestions))
	for _, s := range m.PendingSuggestions {
		title := s.ItemID
		if idx := m.State.FindItem(s.ItemID); idx >= 0 {
			title = m.State.Items[idx].Title
		}
		rows = append(rows, fmt.Sprintf("%s %s: %s", s.Action, title, s.Reason))
	}
	return views.RenderApprovalPanel("cleanup suggestions", rows)
}

func (m Model) renderHelpPane() string {
	return views.RenderHelpPanel(views.HelpPanelData{
		Tab: string(m.ActiveTab),
		Bindings: []string{
			"- 1/2/3: switch tab",
			"- a or i: quick add (prefix with daily/weekly/monthly/annually to recur)",
			"- j/k or arrows: move cursor",
			"- space/enter: toggle done (checklist) or timer (tracked)",
			"- s: start/stop timer",
			"- e: archive, d: delete",
			"- S: weekly summary, C: cleanup suggestions",
			"- /: command palette (add, done, start, stop, archive, unarchive, delete, purge, reset, ask)",
		},
	})
}
