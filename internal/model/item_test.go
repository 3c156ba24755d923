package model

import (
	"errors"
	"testing"
	"time"
)

func validChecklist() Item {
	created := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	return Item{
		ID:        "a",
		Tab:       TabDayToDay,
		Title:     "water plants",
		Status:    StatusActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestTabKindSelectsVariant(t *testing.T) {
	if TabDayToDay.Kind() != KindChecklist || TabHitMyGoal.Kind() != KindChecklist {
		t.Fatalf("checklist tabs misclassified")
	}
	if TabSpendMyTime.Kind() != KindTracked {
		t.Fatalf("spendMyTime must be tracked")
	}
	if Tab("bogus").IsValid() {
		t.Fatalf("bogus tab must be invalid")
	}
}

func TestItemValidate(t *testing.T) {
	if err := validChecklist().Validate(); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}

	missing := validChecklist()
	missing.Title = "  "
	if err := missing.Validate(); err == nil {
		t.Fatalf("blank title accepted")
	}

	badTab := validChecklist()
	badTab.Tab = Tab("elsewhere")
	if err := badTab.Validate(); !errors.Is(err, ErrInvalidTab) {
		t.Fatalf("expected ErrInvalidTab, got %v", err)
	}

	badStatus := validChecklist()
	badStatus.Status = Status("paused")
	if err := badStatus.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	session := time.Now()
	withSession := validChecklist()
	withSession.SessionStart = &session
	if err := withSession.Validate(); err == nil {
		t.Fatalf("checklist item with a running session accepted")
	}

	negative := validChecklist()
	negative.Tab = TabSpendMyTime
	negative.CompletedMinutes = -1
	if err := negative.Validate(); err == nil {
		t.Fatalf("negative tracked minutes accepted")
	}
}

func TestRecurrenceValidate(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	good := Recurrence{Frequency: FrequencyWeekly, Timezone: "UTC", StartDate: start}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid recurrence rejected: %v", err)
	}

	badFreq := good
	badFreq.Frequency = Frequency("fortnightly")
	if err := badFreq.Validate(); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}

	zeroCap := 0
	badCap := good
	badCap.TotalOccurrences = &zeroCap
	if err := badCap.Validate(); err == nil {
		t.Fatalf("zero occurrence cap accepted")
	}
}

func TestRecurrenceHelpers(t *testing.T) {
	r := Recurrence{Frequency: FrequencyDaily}
	if r.EffectiveInterval() != 1 {
		t.Fatalf("zero interval must normalize to 1")
	}
	r.Interval = 3
	if r.EffectiveInterval() != 3 {
		t.Fatalf("interval = %d", r.EffectiveInterval())
	}

	limit := 2
	r.TotalOccurrences = &limit
	r.CompletedOccurrences = 1
	if r.CapReached() {
		t.Fatalf("cap not yet reached")
	}
	r.CompletedOccurrences = 2
	if !r.CapReached() {
		t.Fatalf("cap reached but not reported")
	}
}

func TestSplitPeriodTitle(t *testing.T) {
	cases := []struct {
		title string
		base  string
		key   string
		ok    bool
	}{
		{"gym-20260114", "gym", "20260114", true},
		{"weekly-review-20260118", "weekly-review", "20260118", true},
		{"gym", "gym", "", false},
		{"gym-2026", "gym-2026", "", false},
		{"gym-2026011x", "gym-2026011x", "", false},
		{"-20260114", "-20260114", "", false},
	}
	for _, tc := range cases {
		base, key, ok := SplitPeriodTitle(tc.title)
		if base != tc.base || key != tc.key || ok != tc.ok {
			t.Fatalf("%q: got (%q, %q, %v), want (%q, %q, %v)", tc.title, base, key, ok, tc.base, tc.key, tc.ok)
		}
	}
	if got := TitleWithPeriod("gym", "20260114"); got != "gym-20260114" {
		t.Fatalf("title with period = %q", got)
	}
}

func TestEffectiveBaseTitle(t *testing.T) {
	item := validChecklist()
	item.Title = "gym-20260114"
	if item.EffectiveBaseTitle() != "gym-20260114" {
		t.Fatalf("raw title should be used when base is empty")
	}
	item.BaseTitle = "gym"
	if item.EffectiveBaseTitle() != "gym" {
		t.Fatalf("base title should win when set")
	}
}
