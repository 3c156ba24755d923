package storage

import (
	"context"
	"testing"
	"time"

	"github.com/jingm4128/mcadence/internal/model"
)

func stateWithTitle(title string) model.AppState {
	st := model.EmptyState()
	st.Items = append(st.Items, model.Item{
		ID:        "a",
		Tab:       model.TabDayToDay,
		Title:     title,
		Status:    model.StatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	return st
}

func TestDebouncerCoalescesRapidSaves(t *testing.T) {
	store := openTestStore(t)
	d := NewDebouncer(store, 50*time.Millisecond)

	d.Save(stateWithTitle("first"))
	d.Save(stateWithTitle("second"))
	d.Save(stateWithTitle("third"))

	// Nothing is written inside the debounce window.
	if got := store.LoadState(context.Background()); len(got.Items) != 0 {
		t.Fatalf("write happened before the delay elapsed")
	}

	time.Sleep(150 * time.Millisecond)
	got := store.LoadState(context.Background())
	if len(got.Items) != 1 || got.Items[0].Title != "third" {
		t.Fatalf("expected only the last state, got %+v", got.Items)
	}
}

func TestDebouncerFlushWritesPendingImmediately(t *testing.T) {
	store := openTestStore(t)
	d := NewDebouncer(store, time.Hour)

	d.Save(stateWithTitle("pending"))
	if err := d.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got := store.LoadState(context.Background())
	if len(got.Items) != 1 || got.Items[0].Title != "pending" {
		t.Fatalf("flush did not write pending state: %+v", got.Items)
	}
}

func TestDebouncerFlushWithoutPendingIsNoOp(t *testing.T) {
	store := openTestStore(t)
	d := NewDebouncer(store, time.Hour)
	if err := d.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := store.LoadState(context.Background()); len(got.Items) != 0 {
		t.Fatalf("unexpected write: %+v", got.Items)
	}
}

func TestSaveImmediateSupersedesPending(t *testing.T) {
	store := openTestStore(t)
	d := NewDebouncer(store, time.Hour)

	d.Save(stateWithTitle("stale"))
	if err := d.SaveImmediate(stateWithTitle("fresh")); err != nil {
		t.Fatalf("save immediate: %v", err)
	}
	got := store.LoadState(context.Background())
	if len(got.Items) != 1 || got.Items[0].Title != "fresh" {
		t.Fatalf("expected immediate state, got %+v", got.Items)
	}
}
