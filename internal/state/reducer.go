// Package state holds the application state machine: a pure reducer over
// typed actions plus the recurrence reconciliation engine that keeps
// period-tagged occurrences in step with calendar time.
package state

import (
	"time"

	"github.com/jingm4128/mcadence/internal/clock"
	"github.com/jingm4128/mcadence/internal/model"
)

// Reducer applies actions to state. It performs no I/O and generates no ids
// or wall-clock reads; the clock is consulted only for calendar arithmetic
// on instants carried by the actions, so Apply is deterministic.
type Reducer struct {
	clock *clock.Clock
}

func NewReducer(c *clock.Clock) *Reducer {
	return &Reducer{clock: c}
}

// Apply returns the successor state. Every action is total: unknown ids and
// absent recurrence settings reduce to no-ops, never errors.
func (r *Reducer) Apply(s model.AppState, a Action) model.AppState {
	switch act := a.(type) {
	case Load:
		return act.State
	case AddItem:
		next := shallowCopy(s)
		next.Items = append(next.Items, act.Item)
		return next
	case AddItems:
		next := shallowCopy(s)
		next.Items = append(next.Items, act.Items...)
		return next
	case UpdateItem:
		return r.updateItems(s, []string{act.ID}, act.Patch, act.Now)
	case UpdateItems:
		return r.updateItems(s, act.IDs, act.Patch, act.Now)
	case DeleteItem:
		return r.mutateItem(s, act.ID, func(item model.Item) model.Item {
			now := act.Now
			item.IsDeleted = true
			item.DeletedAt = &now
			item.SessionStart = nil
			item.UpdatedAt = act.Now
			return item
		})
	case PurgeItem:
		return purgeItem(s, act.ID)
	case ToggleChecklist:
		return r.mutateItem(s, act.ID, func(item model.Item) model.Item {
			return r.toggleChecklist(item, act.Now)
		})
	case ArchiveItem:
		return r.mutateItem(s, act.ID, func(item model.Item) model.Item {
			now := act.Now
			item.IsArchived = true
			item.ArchivedAt = &now
			item.UpdatedAt = act.Now
			return item
		})
	case UnarchiveItem:
		return r.mutateItem(s, act.ID, func(item model.Item) model.Item {
			item.IsArchived = false
			item.ArchivedAt = nil
			item.UpdatedAt = act.Now
			return item
		})
	case StartTimer:
		return r.startTimer(s, act)
	case StopTimer:
		return r.mutateItem(s, act.ID, func(item model.Item) model.Item {
			return stopTimer(item, act.Now)
		})
	case ResetWeeklyPeriods:
		return r.resetWeeklyPeriods(s, act.Now)
	case LogAction:
		next := shallowCopy(s)
		next.Actions = append(next.Actions, act.Entry)
		return next
	default:
		return s
	}
}

func shallowCopy(s model.AppState) model.AppState {
	items := make([]model.Item, len(s.Items))
	copy(items, s.Items)
	actions := make([]model.ActionEntry, len(s.Actions))
	copy(actions, s.Actions)
	return model.AppState{Items: items, Actions: actions, Categories: s.Categories}
}

func (r *Reducer) mutateItem(s model.AppState, id string, fn func(model.Item) model.Item) model.AppState {
	idx := s.FindItem(id)
	if idx < 0 {
		return s
	}
	next := shallowCopy(s)
	next.Items[idx] = fn(next.Items[idx])
	return next
}

func (r *Reducer) updateItems(s model.AppState, ids []string, patch ItemPatch, now time.Time) model.AppState {
	if len(ids) == 0 {
		return s
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	touched := false
	next := shallowCopy(s)
	for i := range next.Items {
		if !want[next.Items[i].ID] {
			continue
		}
		next.Items[i] = applyPatch(next.Items[i], patch, now)
		touched = true
	}
	if !touched {
		return s
	}
	return next
}

func applyPatch(item model.Item, p ItemPatch, now time.Time) model.Item {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.BaseTitle != nil {
		item.BaseTitle = *p.BaseTitle
	}
	if p.CategoryID != nil {
		item.CategoryID = *p.CategoryID
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.SortKey != nil {
		item.SortKey = *p.SortKey
	}
	if p.PeriodKey != nil {
		item.PeriodKey = *p.PeriodKey
	}
	if p.Recurrence != nil {
		rec := *p.Recurrence
		item.Recurrence = &rec
	}
	if p.IsDone != nil {
		item.IsDone = *p.IsDone
	}
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		item.CompletedAt = &at
	} else if p.ClearCompletedAt {
		item.CompletedAt = nil
	}
	if p.RequiredMinutes != nil {
		item.RequiredMinutes = *p.RequiredMinutes
	}
	if p.CompletedMinutes != nil {
		item.CompletedMinutes = *p.CompletedMinutes
	}
	if p.PeriodStart != nil {
		at := *p.PeriodStart
		item.PeriodStart = &at
	}
	if p.PeriodEnd != nil {
		at := *p.PeriodEnd
		item.PeriodEnd = &at
	}
	if p.SessionStart != nil {
		at := *p.SessionStart
		item.SessionStart = &at
	} else if p.ClearSessionStart {
		item.SessionStart = nil
	}
	item.UpdatedAt = now
	return item
}

func purgeItem(s model.AppState, id string) model.AppState {
	idx := s.FindItem(id)
	if idx < 0 {
		return s
	}
	next := shallowCopy(s)
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	kept := next.Actions[:0:0]
	for _, entry := range next.Actions {
		if entry.ItemID != id {
			kept = append(kept, entry)
		}
	}
	next.Actions = kept
	return next
}

// toggleChecklist flips completion on a checklist item. Three shapes, in
// priority order: period-tagged recurring items only flip and bump the
// occurrence counter (spawning belongs to the reconciler); legacy recurring
// items without a period key advance in place; plain items just flip.
func (r *Reducer) toggleChecklist(item model.Item, now time.Time) model.Item {
	if item.Tab.Kind() != model.KindChecklist {
		return item
	}
	item.UpdatedAt = now

	switch {
	case item.Recurrence != nil && item.PeriodKey != "":
		rec := *item.Recurrence
		if !item.IsDone {
			item.IsDone = true
			at := now
			item.CompletedAt = &at
			item.Status = model.StatusDone
			rec.CompletedOccurrences++
		} else {
			item.IsDone = false
			item.CompletedAt = nil
			item.Status = model.StatusActive
			if rec.CompletedOccurrences > 0 {
				rec.CompletedOccurrences--
			}
		}
		item.Recurrence = &rec
		return item

	case item.Recurrence != nil:
		rec := *item.Recurrence
		if !item.IsDone {
			rec.CompletedOccurrences++
			if rec.CapReached() {
				item.IsDone = true
				at := now
				item.CompletedAt = &at
				item.Status = model.StatusDone
				item.IsArchived = true
				item.ArchivedAt = &at
			} else {
				anchor := rec.NextDue
				if anchor.IsZero() {
					anchor = now
				}
				rec.NextDue = r.clock.NextDue(anchor, rec.Frequency, rec.EffectiveInterval())
				item.IsDone = false
				item.CompletedAt = nil
				item.Status = model.StatusActive
			}
		} else {
			item.IsDone = false
			item.CompletedAt = nil
			item.Status = model.StatusActive
			item.IsArchived = false
			item.ArchivedAt = nil
			if rec.CompletedOccurrences > 0 {
				rec.CompletedOccurrences--
			}
		}
		item.Recurrence = &rec
		return item

	default:
		if !item.IsDone {
			item.IsDone = true
			at := now
			item.CompletedAt = &at
			item.Status = model.StatusDone
		} else {
			item.IsDone = false
			item.CompletedAt = nil
			item.Status = model.StatusActive
		}
		return item
	}
}

// startTimer is atomic: when concurrent timers are disallowed, every other
// running session is cleared in the same transition that starts the target.
func (r *Reducer) startTimer(s model.AppState, act StartTimer) model.AppState {
	idx := s.FindItem(act.ID)
	if idx < 0 || s.Items[idx].Tab.Kind() != model.KindTracked || s.Items[idx].IsDeleted {
		return s
	}
	next := shallowCopy(s)
	if !act.AllowConcurrent {
		for i := range next.Items {
			if i == idx {
				continue
			}
			if next.Items[i].IsRunning() {
				next.Items[i].SessionStart = nil
				next.Items[i].UpdatedAt = act.Now
			}
		}
	}
	target := next.Items[idx]
	if target.SessionStart == nil {
		at := act.Now
		target.SessionStart = &at
		target.UpdatedAt = act.Now
	}
	next.Items[idx] = target
	return next
}

// stopTimer credits whole elapsed minutes, rounding down; partial minutes
// are never credited.
func stopTimer(item model.Item, now time.Time) model.Item {
	if !item.IsRunning() {
		return item
	}
	elapsed := int(now.Sub(*item.SessionStart) / time.Minute)
	if elapsed > 0 {
		item.CompletedMinutes += elapsed
	}
	item.SessionStart = nil
	item.UpdatedAt = now
	if item.RequiredMinutes > 0 && item.CompletedMinutes >= item.RequiredMinutes {
		item.Status = model.StatusDone
	}
	return item
}

func (r *Reducer) resetWeeklyPeriods(s model.AppState, now time.Time) model.AppState {
	weekStart := r.clock.WeekStart(now)
	weekEnd := r.clock.WeekEnd(now)
	next := shallowCopy(s)
	touched := false
	for i := range next.Items {
		if next.Items[i].Tab.Kind() != model.KindTracked {
			continue
		}
		item := next.Items[i]
		item.CompletedMinutes = 0
		item.SessionStart = nil
		ws, we := weekStart, weekEnd
		item.PeriodStart = &ws
		item.PeriodEnd = &we
		item.UpdatedAt = now
		next.Items[i] = item
		touched = true
	}
	if !touched {
		return s
	}
	return next
}
