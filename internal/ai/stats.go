package ai

import (
	"time"

	"github.com/jingm4128/mcadence/internal/model"
)

const (
	titleTruncateRunes = 48
	staleAfter         = 14 * 24 * time.Hour
	lowProgressRatio   = 0.25
)

// Period bounds a statistics window.
type Period struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Label    string    `json:"label"`
	Timezone string    `json:"timezone"`
}

// Stats is the aggregated, privacy-preserving snapshot handed to the
// provider boundary: totals and histograms only, titles truncated, never
// raw action payloads.
type Stats struct {
	Period              Period         `json:"period"`
	TotalItems          int            `json:"totalItems"`
	CompletedChecklist  int            `json:"completedChecklist"`
	MissedChecklist     int            `json:"missedChecklist"`
	TotalTrackedMinutes int            `json:"totalTrackedMinutes"`
	MinutesByCategory   map[string]int `json:"minutesByCategory"`
	StopsByWeekday      map[string]int `json:"stopsByWeekday"`
	StaleItems          []ItemDigest   `json:"staleItems"`
	LowProgress         []ItemDigest   `json:"lowProgress"`
}

// ItemDigest is the only per-item shape that crosses the boundary.
type ItemDigest struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Tab           string `json:"tab"`
	Category      string `json:"category"`
	DaysUntouched int    `json:"daysUntouched"`
	ProgressPct   int    `json:"progressPct,omitempty"`
}

// BuildStats aggregates a read-only snapshot over the given period. The
// weekday histogram is derived from timer_stop entries in the action log;
// nothing else is read from log payloads.
func BuildStats(snapshot model.AppState, period Period, now time.Time) Stats {
	stats := Stats{
		Period:            period,
		MinutesByCategory: make(map[string]int),
		StopsByWeekday:    make(map[string]int),
	}

	for _, item := range snapshot.Items {
		if item.IsDeleted {
			continue
		}
		stats.TotalItems++
		switch item.Tab.Kind() {
		case model.KindChecklist:
			switch item.Status {
			case model.StatusDone:
				stats.CompletedChecklist++
			case model.StatusMissed:
				stats.MissedChecklist++
			}
		case model.KindTracked:
			stats.TotalTrackedMinutes += item.CompletedMinutes
			name := model.SubcategoryName(snapshot.Categories, item.CategoryID)
			stats.MinutesByCategory[name] += item.CompletedMinutes
			if item.RequiredMinutes > 0 && !item.IsArchived && item.Status == model.StatusActive {
				ratio := float64(item.CompletedMinutes) / float64(item.RequiredMinutes)
				if ratio < lowProgressRatio {
					stats.LowProgress = append(stats.LowProgress, digest(item, snapshot.Categories, now))
				}
			}
		}
		if !item.IsArchived && item.Status == model.StatusActive && now.Sub(item.UpdatedAt) > staleAfter {
			stats.StaleItems = append(stats.StaleItems, digest(item, snapshot.Categories, now))
		}
	}

	for _, entry := range snapshot.Actions {
		if entry.Type != model.ActionTimerStop {
			continue
		}
		if entry.Timestamp.Before(period.Start) || entry.Timestamp.After(period.End) {
			continue
		}
		stats.StopsByWeekday[entry.Timestamp.Weekday().String()]++
	}

	return stats
}

func digest(item model.Item, categories []model.Category, now time.Time) ItemDigest {
	d := ItemDigest{
		ID:       item.ID,
		Title:    truncateTitle(item.Title),
		Tab:      string(item.Tab),
		Category: model.SubcategoryName(categories, item.CategoryID),
	}
	if !item.UpdatedAt.IsZero() {
		d.DaysUntouched = int(now.Sub(item.UpdatedAt).Hours() / 24)
	}
	if item.Tab.Kind() == model.KindTracked && item.RequiredMinutes > 0 {
		d.ProgressPct = item.CompletedMinutes * 100 / item.RequiredMinutes
	}
	return d
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= titleTruncateRunes {
		return title
	}
	return string(runes[:titleTruncateRunes]) + "…"
}
