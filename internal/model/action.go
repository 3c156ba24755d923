package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ActionType string

const (
	ActionCreate     ActionType = "create"
	ActionUpdate     ActionType = "update"
	ActionDelete     ActionType = "delete"
	ActionArchive    ActionType = "archive"
	ActionUnarchive  ActionType = "unarchive"
	ActionComplete   ActionType = "complete"
	ActionTimerStart ActionType = "timer_start"
	ActionTimerStop  ActionType = "timer_stop"
)

var ErrInvalidActionType = errors.New("model: invalid action type")

func (t ActionType) IsValid() bool {
	switch t {
	case ActionCreate, ActionUpdate, ActionDelete, ActionArchive,
		ActionUnarchive, ActionComplete, ActionTimerStart, ActionTimerStop:
		return true
	default:
		return false
	}
}

// ActionEntry is an append-only audit record. Entries are never mutated and
// never replayed to rebuild state; they feed derived analytics only.
type ActionEntry struct {
	ID        string         `json:"id"`
	ItemID    string         `json:"itemId"`
	Tab       Tab            `json:"tab"`
	Type      ActionType     `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

func (a ActionEntry) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("model: action id is required")
	}
	if strings.TrimSpace(a.ItemID) == "" {
		return errors.New("model: action item id is required")
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidActionType, a.Type)
	}
	if a.Timestamp.IsZero() {
		return errors.New("model: action timestamp is required")
	}
	return nil
}
