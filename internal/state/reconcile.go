package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jingm4128/mcadence/internal/clock"
	"github.com/jingm4128/mcadence/internal/model"
)

// Reconciler rolls elapsed recurrence periods forward: stale active
// occurrences become missed and the current period's occurrence is spawned,
// with exactly one live item per (base title, current period key). It reads
// state and emits ordinary reducer actions; it never mutates state itself.
type Reconciler struct {
	clock *clock.Clock
	newID func() string
}

func NewReconciler(c *clock.Clock) *Reconciler {
	return &Reconciler{clock: c, newID: uuid.NewString}
}

// NewReconcilerWithIDs pins id generation for tests.
func NewReconcilerWithIDs(c *clock.Clock, newID func() string) *Reconciler {
	return &Reconciler{clock: c, newID: newID}
}

// Reconcile scans recurring period-tagged items and returns at most two
// actions: one batched mark-missed update and one batched add. Running it
// again on the resulting state returns nothing, so it is safe to invoke
// after every transition, including the ones it causes.
func (r *Reconciler) Reconcile(s model.AppState) []Action {
	now := r.clock.Now()

	// Existence of any non-deleted occurrence per (base, periodKey),
	// archived included: an early-archived current occurrence still counts
	// as reconciled.
	present := make(map[string]bool)
	for _, item := range s.Items {
		if item.IsDeleted || item.PeriodKey == "" {
			continue
		}
		present[pairKey(item.EffectiveBaseTitle(), item.PeriodKey)] = true
	}

	handled := make(map[string]bool)
	var missedIDs []string
	var spawned []model.Item
	nextSort := s.NextSortKey()

	for _, item := range s.Items {
		if item.IsDeleted || !item.Recurring() {
			continue
		}
		if !r.clock.IsPeriodPassed(item.PeriodKey) {
			continue
		}
		rec := *item.Recurrence
		base := item.EffectiveBaseTitle()
		currentKey := r.clock.PeriodKeyFor(now, rec.Frequency)
		pair := pairKey(base, currentKey)
		if handled[pair] {
			continue
		}
		handled[pair] = true
		if present[pair] {
			continue
		}
		if item.Status == model.StatusActive {
			missedIDs = append(missedIDs, item.ID)
		}
		if rec.CapReached() {
			continue
		}
		spawned = append(spawned, r.spawn(item, rec, base, currentKey, nextSort, now))
		nextSort++
	}

	var actions []Action
	if len(missedIDs) > 0 {
		missed := model.StatusMissed
		actions = append(actions, UpdateItems{
			IDs:   missedIDs,
			Patch: ItemPatch{Status: &missed},
			Now:   now,
		})
	}
	if len(spawned) > 0 {
		actions = append(actions, AddItems{Items: spawned})
	}
	return actions
}

func (r *Reconciler) spawn(stale model.Item, rec model.Recurrence, base, currentKey string, sortKey int64, now time.Time) model.Item {
	due, err := r.clock.PeriodDueDate(currentKey)
	if err == nil {
		rec.NextDue = due
	}
	item := model.Item{
		ID:         r.newID(),
		Tab:        stale.Tab,
		Title:      model.TitleWithPeriod(base, currentKey),
		BaseTitle:  base,
		CategoryID: stale.CategoryID,
		SortKey:    sortKey,
		Status:     model.StatusActive,
		PeriodKey:  currentKey,
		Recurrence: &rec,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if stale.Tab.Kind() == model.KindTracked {
		item.RequiredMinutes = stale.RequiredMinutes
		ws := r.clock.WeekStart(now)
		we := r.clock.WeekEnd(now)
		item.PeriodStart = &ws
		item.PeriodEnd = &we
	}
	return item
}

func pairKey(base, periodKey string) string {
	return base + "\x00" + periodKey
}
