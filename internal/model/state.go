package model

import "time"

// AppState is the entire persisted document. All mutation flows through the
// reducer; nothing outside internal/state writes to it.
type AppState struct {
	Items      []Item        `json:"items"`
	Actions    []ActionEntry `json:"actions"`
	Categories []Category    `json:"categories"`
}

func EmptyState() AppState {
	return AppState{
		Items:      []Item{},
		Actions:    []ActionEntry{},
		Categories: []Category{},
	}
}

// FindItem returns the index of the item with the given id, or -1.
func (s AppState) FindItem(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Live returns the non-deleted items.
func (s AppState) Live() []Item {
	out := make([]Item, 0, len(s.Items))
	for _, item := range s.Items {
		if !item.IsDeleted {
			out = append(out, item)
		}
	}
	return out
}

// NextSortKey returns one past the highest sort key in use.
func (s AppState) NextSortKey() int64 {
	var max int64
	for _, item := range s.Items {
		if item.SortKey > max {
			max = item.SortKey
		}
	}
	return max + 1
}

// Clone deep-copies the state so snapshots handed to read-only consumers
// cannot alias reducer-owned slices.
func (s AppState) Clone() AppState {
	out := AppState{
		Items:      make([]Item, len(s.Items)),
		Actions:    make([]ActionEntry, len(s.Actions)),
		Categories: make([]Category, len(s.Categories)),
	}
	copy(out.Items, s.Items)
	for i := range out.Items {
		out.Items[i] = cloneItem(out.Items[i])
	}
	copy(out.Actions, s.Actions)
	for i := range out.Actions {
		if p := out.Actions[i].Payload; p != nil {
			cp := make(map[string]any, len(p))
			for k, v := range p {
				cp[k] = v
			}
			out.Actions[i].Payload = cp
		}
	}
	for i, cat := range s.Categories {
		subs := make([]Subcategory, len(cat.Subcategories))
		copy(subs, cat.Subcategories)
		out.Categories[i] = Category{ID: cat.ID, Name: cat.Name, Subcategories: subs}
	}
	return out
}

func cloneItem(item Item) Item {
	item.ArchivedAt = cloneTimePtr(item.ArchivedAt)
	item.DeletedAt = cloneTimePtr(item.DeletedAt)
	item.CompletedAt = cloneTimePtr(item.CompletedAt)
	item.SessionStart = cloneTimePtr(item.SessionStart)
	item.PeriodStart = cloneTimePtr(item.PeriodStart)
	item.PeriodEnd = cloneTimePtr(item.PeriodEnd)
	if item.Recurrence != nil {
		rec := *item.Recurrence
		if rec.TotalOccurrences != nil {
			n := *rec.TotalOccurrences
			rec.TotalOccurrences = &n
		}
		item.Recurrence = &rec
	}
	return item
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
