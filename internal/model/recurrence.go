package model

import (
	"errors"
	"fmt"
	"time"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyAnnually Frequency = "annually"
)

var (
	ErrInvalidFrequency = errors.New("model: invalid recurrence frequency")
	ErrInvalidInterval  = errors.New("model: invalid recurrence interval")
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyAnnually:
		return true
	default:
		return false
	}
}

// Recurrence is attached to an item rather than stored as its own entity.
// TotalOccurrences caps how many occurrences may ever complete; nil means
// unbounded.
type Recurrence struct {
	Frequency            Frequency `json:"frequency"`
	Interval             int       `json:"interval,omitempty"`
	TotalOccurrences     *int      `json:"totalOccurrences,omitempty"`
	CompletedOccurrences int       `json:"completedOccurrences"`
	Timezone             string    `json:"timezone"`
	StartDate            time.Time `json:"startDate"`
	NextDue              time.Time `json:"nextDue"`
}

func (r Recurrence) Validate() error {
	if !r.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, r.Frequency)
	}
	if r.Interval < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, r.Interval)
	}
	if r.TotalOccurrences != nil && *r.TotalOccurrences < 1 {
		return errors.New("model: total occurrences must be at least 1")
	}
	if r.CompletedOccurrences < 0 {
		return errors.New("model: completed occurrences must be non-negative")
	}
	if r.StartDate.IsZero() {
		return errors.New("model: recurrence start date is required")
	}
	return nil
}

// EffectiveInterval normalizes the optional interval multiplier; zero means 1.
func (r Recurrence) EffectiveInterval() int {
	if r.Interval <= 0 {
		return 1
	}
	return r.Interval
}

// CapReached reports whether the occurrence cap is set and already met.
func (r Recurrence) CapReached() bool {
	return r.TotalOccurrences != nil && r.CompletedOccurrences >= *r.TotalOccurrences
}
