package utils

import (
	"fmt"
	"time"
)

// Clock abstracts "now" so the booking engine and sweeper can be driven by a
// fixed clock in tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Slot label local-time windows, hours from local midnight.
var slotWindows = map[string][2]int{
	"morning":   {9, 12},
	"afternoon": {13, 17},
	"evening":   {17, 21},
}

// BusinessTime converts between storage-neutral UTC instants and the fixed
// local business timezone. All persisted instants are UTC; local time only
// appears at the slot-window and calendar-date boundary.
type BusinessTime struct {
	Loc *time.Location
}

func NewBusinessTime(tzName string) (*BusinessTime, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid business timezone %q: %w", tzName, err)
	}
	return &BusinessTime{Loc: loc}, nil
}

// LocalDate returns the business-timezone calendar date of an instant.
func (bt *BusinessTime) LocalDate(instant time.Time) string {
	return instant.In(bt.Loc).Format("2006-01-02")
}

// DayBounds returns the UTC instants bounding the business-timezone calendar
// day that contains instant, as a half-open interval [start, end).
func (bt *BusinessTime) DayBounds(instant time.Time) (time.Time, time.Time) {
	local := instant.In(bt.Loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, bt.Loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// SlotWindow maps a coarse slot label (morning/afternoon/evening) to its
// fixed local-time window on the calendar date of instant, returned as UTC
// instants.
func (bt *BusinessTime) SlotWindow(label string, instant time.Time) (time.Time, time.Time, error) {
	hours, ok := slotWindows[label]
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("unknown slot label %q", label)
	}
	local := instant.In(bt.Loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), hours[0], 0, 0, 0, bt.Loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), hours[1], 0, 0, 0, bt.Loc)
	return start.UTC(), end.UTC(), nil
}

// MinutesOfDay returns the minutes elapsed since local midnight for an
// instant, matching the convention blocked time slots are stored in.
func (bt *BusinessTime) MinutesOfDay(instant time.Time) int {
	local := instant.In(bt.Loc)
	return local.Hour()*60 + local.Minute()
}

// OccupiedWindow computes the schedule window a reservation occupies:
// [instant, instant + duration + buffer).
func OccupiedWindow(instant time.Time, durationMin, bufferMin int) (time.Time, time.Time) {
	return instant, instant.Add(time.Duration(durationMin+bufferMin) * time.Minute)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect: aStart < bEnd && bStart < aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
