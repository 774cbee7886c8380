// internal/domain/delivery/schedule.go
package delivery

import (
	"fmt"
	"time"
)

// TimeSlots are the four fixed 3-hour delivery windows offered for
// economy-tier scheduling.
var TimeSlots = []string{
	"09:00-12:00",
	"12:00-15:00",
	"15:00-18:00",
	"18:00-21:00",
}

const dateLayout = "2006-01-02"

// ErrScheduleIncomplete signals that date or slot is missing; the
// window cannot be resolved yet but nothing is invalid.
var ErrScheduleIncomplete = fmt.Errorf("delivery date and time slot are both required")

// Scheduler resolves and validates scheduled delivery windows
type Scheduler struct {
	horizonDays int
	location    *time.Location
}

// NewScheduler creates a scheduler with the given horizon (days ahead a
// delivery may be booked) anchored in the given timezone.
func NewScheduler(horizonDays int, location *time.Location) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{
		horizonDays: horizonDays,
		location:    location,
	}
}

// ValidSlot reports whether the slot is one of the fixed windows
func ValidSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// ResolveWindow combines a date ("2006-01-02") and a slot
// ("HH:MM-HH:MM") into a timestamp anchored at the slot's start time on
// that date. Returns ErrScheduleIncomplete when either part is missing,
// and an error when the slot is unknown or the date falls outside
// [today, today+horizon].
func (s *Scheduler) ResolveWindow(date, slot string, now time.Time) (*time.Time, error) {
	if date == "" || slot == "" {
		return nil, ErrScheduleIncomplete
	}

	if !ValidSlot(slot) {
		return nil, fmt.Errorf("unknown time slot %q", slot)
	}

	day, err := time.ParseInLocation(dateLayout, date, s.location)
	if err != nil {
		return nil, fmt.Errorf("invalid delivery date %q: %w", date, err)
	}

	if !s.DateSelectable(day, now) {
		return nil, fmt.Errorf("delivery date must be within %d days from today", s.horizonDays)
	}

	var startHour, startMin int
	if _, err := fmt.Sscanf(slot, "%d:%d", &startHour, &startMin); err != nil {
		return nil, fmt.Errorf("invalid time slot %q: %w", slot, err)
	}

	resolved := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, s.location)
	return &resolved, nil
}

// DateSelectable reports whether the calendar day falls within
// [today, today+horizon] inclusive, in the scheduler's timezone.
func (s *Scheduler) DateSelectable(day, now time.Time) bool {
	today := startOfDay(now.In(s.location))
	candidate := startOfDay(day.In(s.location))
	last := today.AddDate(0, 0, s.horizonDays)

	return !candidate.Before(today) && !candidate.After(last)
}

// AvailableDates lists the selectable calendar days starting from now.
// The UI layer restricts its date picker to exactly this set.
func (s *Scheduler) AvailableDates(now time.Time) []string {
	today := startOfDay(now.In(s.location))
	dates := make([]string, 0, s.horizonDays+1)
	for i := 0; i <= s.horizonDays; i++ {
		dates = append(dates, today.AddDate(0, 0, i).Format(dateLayout))
	}
	return dates
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
