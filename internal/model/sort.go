package model

import (
	"sort"
	"time"
)

// SortForDisplay orders items due-date first (soonest due at the top,
// undated items after dated ones), then by category, then by sort key.
func SortForDisplay(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		di, oki := displayDue(items[i])
		dj, okj := displayDue(items[j])
		switch {
		case oki && okj && !di.Equal(dj):
			return di.Before(dj)
		case oki != okj:
			return oki
		}
		if items[i].CategoryID != items[j].CategoryID {
			return items[i].CategoryID < items[j].CategoryID
		}
		return items[i].SortKey < items[j].SortKey
	})
}

func displayDue(item Item) (time.Time, bool) {
	if item.Recurrence != nil && !item.Recurrence.NextDue.IsZero() {
		return item.Recurrence.NextDue, true
	}
	if item.PeriodEnd != nil {
		return *item.PeriodEnd, true
	}
	return time.Time{}, false
}
