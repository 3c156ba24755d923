package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTab    = errors.New("model: invalid tab")
	ErrInvalidStatus = errors.New("model: invalid item status")
)

// Tab identifies which surface an item lives on and doubles as the variant
// discriminant: day-to-day and hit-my-goal items are checklist items,
// spend-my-time items are time-tracked.
type Tab string

const (
	TabDayToDay    Tab = "dayToDay"
	TabHitMyGoal   Tab = "hitMyGoal"
	TabSpendMyTime Tab = "spendMyTime"
)

func (t Tab) IsValid() bool {
	switch t {
	case TabDayToDay, TabHitMyGoal, TabSpendMyTime:
		return true
	default:
		return false
	}
}

type Kind string

const (
	KindChecklist Kind = "checklist"
	KindTracked   Kind = "tracked"
)

func (t Tab) Kind() Kind {
	if t == TabSpendMyTime {
		return KindTracked
	}
	return KindChecklist
}

type Status string

const (
	StatusActive Status = "active"
	StatusDone   Status = "done"
	StatusMissed Status = "missed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusDone, StatusMissed:
		return true
	default:
		return false
	}
}

// Item is the single persisted record for both variants. The Tab field
// selects which variant-specific fields are meaningful; the zero values of
// the other variant's fields are ignored and serialized as omitted.
type Item struct {
	ID         string      `json:"id"`
	Tab        Tab         `json:"tab"`
	Title      string      `json:"title"`
	BaseTitle  string      `json:"baseTitle,omitempty"`
	CategoryID string      `json:"categoryId,omitempty"`
	SortKey    int64       `json:"sortKey"`
	Status     Status      `json:"status"`
	IsArchived bool        `json:"isArchived,omitempty"`
	IsDeleted  bool        `json:"isDeleted,omitempty"`
	PeriodKey  string      `json:"periodKey,omitempty"`
	Recurrence *Recurrence `json:"recurrence,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`

	// Checklist variant.
	IsDone      bool       `json:"isDone,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Time-tracked variant.
	RequiredMinutes  int        `json:"requiredMinutes,omitempty"`
	CompletedMinutes int        `json:"completedMinutes,omitempty"`
	SessionStart     *time.Time `json:"currentSessionStart,omitempty"`
	PeriodStart      *time.Time `json:"periodStart,omitempty"`
	PeriodEnd        *time.Time `json:"periodEnd,omitempty"`
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.New("model: item id is required")
	}
	if strings.TrimSpace(i.Title) == "" {
		return errors.New("model: item title is required")
	}
	if !i.Tab.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTab, i.Tab)
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, i.Status)
	}
	if i.CreatedAt.IsZero() {
		return errors.New("model: item created_at is required")
	}
	if i.Recurrence != nil {
		if err := i.Recurrence.Validate(); err != nil {
			return err
		}
	}
	switch i.Tab.Kind() {
	case KindChecklist:
		if i.SessionStart != nil {
			return errors.New("model: checklist item cannot carry a running session")
		}
	case KindTracked:
		if i.RequiredMinutes < 0 || i.CompletedMinutes < 0 {
			return errors.New("model: tracked minutes must be non-negative")
		}
	}
	return nil
}

// IsRunning reports whether a timer session is active on a tracked item.
func (i Item) IsRunning() bool {
	return i.Tab.Kind() == KindTracked && i.SessionStart != nil
}

// Recurring reports whether the item participates in period reconciliation:
// it must carry both a recurrence rule and a period key.
func (i Item) Recurring() bool {
	return i.Recurrence != nil && i.PeriodKey != ""
}

// EffectiveBaseTitle returns BaseTitle when set, otherwise the raw title.
func (i Item) EffectiveBaseTitle() string {
	if i.BaseTitle != "" {
		return i.BaseTitle
	}
	return i.Title
}

// TitleWithPeriod renders the display title of a recurring occurrence,
// "{base}-{YYYYMMDD}".
func TitleWithPeriod(base, periodKey string) string {
	return base + "-" + periodKey
}

// SplitPeriodTitle strips a trailing period suffix from a display title.
// Titles without a well-formed suffix are returned unchanged with ok=false.
func SplitPeriodTitle(title string) (base, periodKey string, ok bool) {
	idx := strings.LastIndex(title, "-")
	if idx <= 0 || len(title)-idx-1 != 8 {
		return title, "", false
	}
	suffix := title[idx+1:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return title, "", false
		}
	}
	return title[:idx], suffix, true
}
