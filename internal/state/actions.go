package state

import (
	"time"

	"github.com/jingm4128/mcadence/internal/model"
)

// Action is the closed set of state transitions. Every timestamp and id
// enters through the action itself so the reducer stays deterministic.
type Action interface {
	isAction()
}

// Load replaces the whole state. Used for hydration, import, and reset.
type Load struct {
	State model.AppState
}

type AddItem struct {
	Item model.Item
}

type AddItems struct {
	Items []model.Item
}

// ItemPatch shallow-merges onto an item. Nil pointer fields are left
// untouched; the Clear flags null out the corresponding nullable field.
type ItemPatch struct {
	Title             *string
	BaseTitle         *string
	CategoryID        *string
	Status            *model.Status
	SortKey           *int64
	PeriodKey         *string
	Recurrence        *model.Recurrence
	IsDone            *bool
	CompletedAt       *time.Time
	ClearCompletedAt  bool
	RequiredMinutes   *int
	CompletedMinutes  *int
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	SessionStart      *time.Time
	ClearSessionStart bool
}

type UpdateItem struct {
	ID    string
	Patch ItemPatch
	Now   time.Time
}

// UpdateItems applies one patch to many items in a single transition, so a
// reconciliation pass marking several occurrences missed costs one action.
type UpdateItems struct {
	IDs   []string
	Patch ItemPatch
	Now   time.Time
}

// DeleteItem is a soft delete: the item stays in the array and keeps its
// action-log entries.
type DeleteItem struct {
	ID  string
	Now time.Time
}

// PurgeItem permanently removes the item and strips its log entries. This
// is the irreversible counterpart to DeleteItem and is exposed under a
// distinct name on purpose.
type PurgeItem struct {
	ID string
}

type ToggleChecklist struct {
	ID  string
	Now time.Time
}

type ArchiveItem struct {
	ID  string
	Now time.Time
}

type UnarchiveItem struct {
	ID  string
	Now time.Time
}

type StartTimer struct {
	ID              string
	Now             time.Time
	AllowConcurrent bool
}

type StopTimer struct {
	ID  string
	Now time.Time
}

// ResetWeeklyPeriods zeroes every tracked item's progress and advances its
// period window to the week containing Now.
type ResetWeeklyPeriods struct {
	Now time.Time
}

type LogAction struct {
	Entry model.ActionEntry
}

func (Load) isAction()               {}
func (AddItem) isAction()            {}
func (AddItems) isAction()           {}
func (UpdateItem) isAction()         {}
func (UpdateItems) isAction()        {}
func (DeleteItem) isAction()         {}
func (PurgeItem) isAction()          {}
func (ToggleChecklist) isAction()    {}
func (ArchiveItem) isAction()        {}
func (UnarchiveItem) isAction()      {}
func (StartTimer) isAction()         {}
func (StopTimer) isAction()          {}
func (ResetWeeklyPeriods) isAction() {}
func (LogAction) isAction()          {}
