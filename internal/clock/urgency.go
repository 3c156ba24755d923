package clock

import "time"

type Urgency string

const (
	UrgencyComplete Urgency = "complete"
	UrgencyOverdue  Urgency = "overdue"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyWarning  Urgency = "warning"
	UrgencyNormal   Urgency = "normal"
)

const (
	urgentWorkMultiplier  = 1.5
	warningWorkMultiplier = 3.0
	urgentWindow          = 12 * time.Hour
	warningWindow         = 24 * time.Hour
)

// ClassifyUrgency weighs the time remaining until nextDue against the work
// remaining. Hours-until-due under 1.5x the remaining work is urgent, under
// 3x is warning.
func (c *Clock) ClassifyUrgency(nextDue time.Time, remainingMinutes int, isComplete bool) Urgency {
	if isComplete || remainingMinutes <= 0 {
		return UrgencyComplete
	}
	now := c.Now()
	if now.After(nextDue) {
		return UrgencyOverdue
	}
	hoursLeft := nextDue.Sub(now).Hours()
	workHours := float64(remainingMinutes) / 60
	if hoursLeft < workHours*urgentWorkMultiplier {
		return UrgencyUrgent
	}
	if hoursLeft < workHours*warningWorkMultiplier {
		return UrgencyWarning
	}
	return UrgencyNormal
}

// ClassifyDeadline is the simpler time-only variant: fixed 12h/24h windows,
// ignoring work remaining. Call sites choose which classification fits.
func (c *Clock) ClassifyDeadline(nextDue time.Time, isComplete bool) Urgency {
	if isComplete {
		return UrgencyComplete
	}
	now := c.Now()
	if now.After(nextDue) {
		return UrgencyOverdue
	}
	left := nextDue.Sub(now)
	if left < urgentWindow {
		return UrgencyUrgent
	}
	if left < warningWindow {
		return UrgencyWarning
	}
	return UrgencyNormal
}
