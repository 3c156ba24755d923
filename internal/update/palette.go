package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jingm4128/mcadence/internal/commands"
	"github.com/jingm4128/mcadence/internal/model"
	"github.com/jingm4128/mcadence/internal/state"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	_ = cmd
	m.Palette.Input = m.commandInput.Value()
	return m, nil
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	switch cmd.Type {
	case commands.TypeAdd:
		tab := cmd.Add.Tab
		if !tab.IsValid() {
			tab = m.ActiveTab
		}
		m.addItem(cmd.Add.Title, tab)
		return m, nil

	case commands.TypeDone:
		item, ok := m.resolveTarget(cmd.Target.Target)
		if !ok {
			m.Status = StatusBar{Text: fmt.Sprintf("no item matches %q", cmd.Target.Target), IsError: true}
			return m, nil
		}
		if item.Tab.Kind() != model.KindChecklist {
			m.Status = StatusBar{Text: "done applies to checklist items; use start/stop for tracked ones", IsError: true}
			return m, nil
		}
		m.dispatch(
			state.ToggleChecklist{ID: item.ID, Now: m.clk.Now()},
			m.logEntry(item.ID, item.Tab, model.ActionComplete, nil),
		)
		m.Status = StatusBar{Text: fmt.Sprintf("toggled: %s", item.Title), IsError: false}
		return m, nil

	case commands.TypeStart:
		item, ok := m.resolveTarget(cmd.Target.Target)
		if !ok {
			m.Status = StatusBar{Text: fmt.Sprintf("no item matches %q", cmd.Target.Target), IsError: true}
			return m, nil
		}
		m.dispatch(
			state.StartTimer{ID: item.ID, Now: m.clk.Now(), AllowConcurrent: m.settings.AllowConcurrentTimers},
			m.logEntry(item.ID, item.Tab, model.ActionTimerStart, nil),
		)
		m.Status = StatusBar{Text: fmt.Sprintf("timer started: %s", item.Title), IsError: false}
		return m, timerTickCmd()

	case commands.TypeStop:
		item, ok := m.resolveTarget(cmd.Target.Target)
		if !ok {
			m.Status = StatusBar{Text: fmt.Sprintf("no item matches %q", cmd.Target.Target), IsError: true}
			return m, nil
		}
		m.dispatch(
			state.StopTimer{ID: item.ID, Now: m.clk.Now()},
			m.logEntry(item.ID, item.Tab, model.ActionTimerStop, nil),
		)
		m.Status = StatusBar{Text: fmt.Sprintf("timer stopped: %s", item.Title), IsError: false}
		return m, nil

	case commands.TypeArchive:
		item, ok := m.resolveTarget(cmd.Target.Target)
		if !ok {
			m.Status = StatusBar{Text: fmt.Sprintf("no item matches %q", cmd.Target.Target), IsError: true}
			return m, nil
		}
		m.dispatch(
			state.ArchiveItem{ID: item.ID, Now: m.clk.Now()},
			m.logEntry(item.ID, item.Tab, model.ActionArchive, nil),
		)
		m.clampCursor()
		m.Status = StatusBar{Text: fmt.Sprintf("archived: %s", item.Title), IsError: false}
		return m, nil

	case commands.TypeUnarchive:
		item, ok := m.resolveTarget(cmd.Target.Target)
		if !ok {
			m.Status = StatusBar{Text: fmt.Sprintf("no item matches %q", cmd.Target.Target), IsError: true}
			return m, nil
		}
		m.dispatch(
			state.UnarchiveItem{ID: item.ID, Now: m.clk.Now()},
			m.logEntry(item.ID, item.Tab, model.ActionUnarchive, nil),
		)
		m.Status = StatusBar{Text: fmt.Sprintf("unarchived: %s", item.Title), IsError: false}
		return m, nil

	case commands.TypeDelete:
		item, ok := m.resolveTarget(cmd.Target.Target)
		if !ok {
			m.Status = StatusBar{Text: fmt.Sprintf("no item matches %q", cmd.Target.Target), IsError: true}
			return m, nil
		}
		m.dispatch(
			state.DeleteItem{ID: item.ID, Now: m.clk.Now()},
			m.logEntry(item.ID, item.Tab, model.ActionDelete, nil),
		)
		m.clampCursor()
		m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s (recoverable)", item.Title), IsError: false}
		return m, nil

	case commands.TypePurge:
		item, ok := m.resolveTarget(cmd.Target.Target)
		if !ok {
			m.Status = StatusBar{Text: fmt.Sprintf("no item matches %q", cmd.Target.Target), IsError: true}
			return m, nil
		}
		m.dispatch(state.PurgeItem{ID: item.ID})
		m.clampCursor()
		m.Status = StatusBar{Text: fmt.Sprintf("purged: %s (permanent)", item.Title), IsError: false}
		return m, nil

	case commands.TypeReset:
		return m.resetAll()

	case commands.TypeAsk:
		return m.requestParse(cmd.Ask.Text)
	}

	m.Status = StatusBar{Text: fmt.Sprintf("unsupported command: %s", cmd.Type), IsError: true}
	return m, nil
}

// resolveTarget matches an item by exact id first, then by case-insensitive
// title prefix among non-deleted items, preferring the active tab.
func (m Model) resolveTarget(target string) (model.Item, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return model.Item{}, false
	}
	if idx := m.State.FindItem(target); idx >= 0 && !m.State.Items[idx].IsDeleted {
		return m.State.Items[idx], true
	}
	lower := strings.ToLower(target)
	match := model.Item{}
	found := false
	for _, item := range m.State.Items {
		if item.IsDeleted || !strings.HasPrefix(strings.ToLower(item.Title), lower) {
			continue
		}
		if !found || (item.Tab == m.ActiveTab && match.Tab != m.ActiveTab) {
			match = item
			found = true
		}
	}
	return match, found
}

// resetAll clears every persisted document and the in-memory state. The
// pending debounced write is flushed into the fresh state afterwards so a
// stale save cannot resurrect the old data.
func (m Model) resetAll() (tea.Model, tea.Cmd) {
	m.State = m.reducer.Apply(m.State, state.Load{State: model.EmptyState()})
	m.Cursor = 0
	m.PendingProposals = nil
	m.PendingSuggestions = nil
	m.SummaryMarkdown = ""
	if m.store != nil {
		if err := m.store.Reset(context.Background()); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
	}
	if err := m.flushNow(); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: "all data reset", IsError: false}
	return m, nil
}
