package ai

import (
	"fmt"
	"testing"
	"time"

	"github.com/jingm4128/mcadence/internal/model"
	"github.com/jingm4128/mcadence/internal/state"
)

func TestProposalActionsBuildsItemsAtDispatchSite(t *testing.T) {
	now := time.Date(2026, time.January, 14, 12, 0, 0, 0, time.UTC)
	st := model.AppState{Items: []model.Item{{ID: "x", SortKey: 5}}}
	counter := 0
	newID := func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}

	proposals := []ItemProposal{
		{Tab: model.TabSpendMyTime, Title: "practice piano", RequiredMinutes: 90},
		{Tab: model.TabDayToDay, Title: "water plants", Frequency: model.FrequencyDaily},
		{Tab: model.Tab("bogus"), Title: "dropped"},
		{Tab: model.TabDayToDay, Title: ""},
	}

	actions := ProposalActions(proposals, st, now, newID)
	if len(actions) != 1 {
		t.Fatalf("expected one AddItems action, got %d", len(actions))
	}
	add, ok := actions[0].(state.AddItems)
	if !ok {
		t.Fatalf("action type = %T", actions[0])
	}
	if len(add.Items) != 2 {
		t.Fatalf("invalid proposals must be dropped, got %d items", len(add.Items))
	}

	tracked := add.Items[0]
	if tracked.ID != "id-1" || tracked.RequiredMinutes != 90 {
		t.Fatalf("tracked proposal = %+v", tracked)
	}
	if tracked.SortKey != 6 || add.Items[1].SortKey != 7 {
		t.Fatalf("sort keys = %d, %d", tracked.SortKey, add.Items[1].SortKey)
	}

	recurring := add.Items[1]
	if recurring.Recurrence == nil || recurring.Recurrence.Frequency != model.FrequencyDaily {
		t.Fatalf("recurring proposal = %+v", recurring)
	}
	if !recurring.CreatedAt.Equal(now) {
		t.Fatalf("created at = %s", recurring.CreatedAt)
	}
}

func TestProposalActionsEmptyInput(t *testing.T) {
	if got := ProposalActions(nil, model.AppState{}, time.Now(), func() string { return "x" }); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	onlyInvalid := []ItemProposal{{Tab: model.Tab("nope"), Title: "t"}}
	if got := ProposalActions(onlyInvalid, model.AppState{}, time.Now(), func() string { return "x" }); got != nil {
		t.Fatalf("expected nil for all-invalid input, got %+v", got)
	}
}

func TestCleanupActionsDropsUnknownIdsAndVerbs(t *testing.T) {
	now := time.Date(2026, time.January, 14, 12, 0, 0, 0, time.UTC)
	st := model.AppState{Items: []model.Item{{ID: "a"}, {ID: "b"}}}

	suggestions := []CleanupSuggestion{
		{ItemID: "a", Action: "archive", Reason: "untouched for a month"},
		{ItemID: "b", Action: "delete", Reason: "duplicate"},
		{ItemID: "ghost", Action: "archive"},
		{ItemID: "a", Action: "purge"},
	}

	actions := CleanupActions(suggestions, st, now)
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if arch, ok := actions[0].(state.ArchiveItem); !ok || arch.ID != "a" {
		t.Fatalf("first action = %+v", actions[0])
	}
	if del, ok := actions[1].(state.DeleteItem); !ok || del.ID != "b" {
		t.Fatalf("second action = %+v", actions[1])
	}
}
