package ai

import (
	"time"

	"github.com/jingm4128/mcadence/internal/model"
	"github.com/jingm4128/mcadence/internal/state"
)

// ItemProposal is a structured new-item suggestion decoded from a provider
// response. Nothing is applied until the user accepts it.
type ItemProposal struct {
	Tab             model.Tab       `json:"tab"`
	Title           string          `json:"title"`
	CategoryID      string          `json:"categoryId,omitempty"`
	RequiredMinutes int             `json:"requiredMinutes,omitempty"`
	Frequency       model.Frequency `json:"frequency,omitempty"`
	Interval        int             `json:"interval,omitempty"`
}

// CleanupSuggestion references an existing item the provider believes is
// stale enough to archive or delete.
type CleanupSuggestion struct {
	ItemID string `json:"itemId"`
	Action string `json:"action"` // "archive" or "delete"
	Reason string `json:"reason"`
}

// ProposalActions translates accepted item proposals into reducer actions.
// Ids and timestamps are generated here, at the dispatch site, keeping the
// reducer deterministic.
func ProposalActions(proposals []ItemProposal, st model.AppState, now time.Time, newID func() string) []state.Action {
	if len(proposals) == 0 {
		return nil
	}
	items := make([]model.Item, 0, len(proposals))
	sortKey := st.NextSortKey()
	for _, p := range proposals {
		if p.Title == "" || !p.Tab.IsValid() {
			continue
		}
		item := model.Item{
			ID:         newID(),
			Tab:        p.Tab,
			Title:      p.Title,
			CategoryID: p.CategoryID,
			SortKey:    sortKey,
			Status:     model.StatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if p.Tab.Kind() == model.KindTracked && p.RequiredMinutes > 0 {
			item.RequiredMinutes = p.RequiredMinutes
		}
		if p.Frequency.IsValid() {
			item.Recurrence = &model.Recurrence{
				Frequency: p.Frequency,
				Interval:  p.Interval,
				StartDate: now,
			}
		}
		items = append(items, item)
		sortKey++
	}
	if len(items) == 0 {
		return nil
	}
	return []state.Action{state.AddItems{Items: items}}
}

// CleanupActions translates accepted cleanup suggestions into reducer
// actions. Unknown actions and unknown ids are dropped, not errors.
func CleanupActions(suggestions []CleanupSuggestion, st model.AppState, now time.Time) []state.Action {
	var actions []state.Action
	for _, s := range suggestions {
		if st.FindItem(s.ItemID) < 0 {
			continue
		}
		switch s.Action {
		case "archive":
			actions = append(actions, state.ArchiveItem{ID: s.ItemID, Now: now})
		case "delete":
			actions = append(actions, state.DeleteItem{ID: s.ItemID, Now: now})
		}
	}
	return actions
}
