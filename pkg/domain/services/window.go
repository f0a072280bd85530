package services

import (
	"fmt"
	"time"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// Window is the active period: the ISO week containing the reference date plus the one before it.
// Bounds are Monday-start calendar dates, so year boundaries need no week-number arithmetic.
type Window struct {
	AsOf          time.Time
	PreviousStart time.Time
	CurrentStart  time.Time
	End           time.Time
}

// NewWindow computes the active window for a reference instant
func NewWindow(now time.Time) Window {
	asOf := calendarDate(now)
	currentStart := weekStart(asOf)
	return Window{
		AsOf:          asOf,
		PreviousStart: currentStart.AddDate(0, 0, -7),
		CurrentStart:  currentStart,
		End:           currentStart.AddDate(0, 0, 7),
	}
}

// Contains reports whether a requisition date belongs to the window. Null dates never do.
func (w Window) Contains(date time.Time) bool {
	if date.IsZero() {
		return false
	}
	day := calendarDate(date)
	return !day.Before(w.PreviousStart) && day.Before(w.End)
}

// Select returns the lines dated inside the window, in input order
func (w Window) Select(lines []entities.RequisitionLine) []entities.RequisitionLine {
	selected := make([]entities.RequisitionLine, 0, len(lines))
	for _, line := range lines {
		if w.Contains(line.RequisitionDate) {
			selected = append(selected, line)
		}
	}
	return selected
}

// CurrentWeek returns the ISO week of the reference date
func (w Window) CurrentWeek() entities.ISOWeek {
	return entities.ISOWeekOf(w.CurrentStart)
}

// PreviousWeek returns the ISO week chronologically before the current one
func (w Window) PreviousWeek() entities.ISOWeek {
	return entities.ISOWeekOf(w.PreviousStart)
}

// Weeks returns the previous and current ISO weeks, in that order
func (w Window) Weeks() [2]entities.ISOWeek {
	return [2]entities.ISOWeek{w.PreviousWeek(), w.CurrentWeek()}
}

// Label renders the window as "2026-W42/2026-W43"
func (w Window) Label() string {
	return fmt.Sprintf("%s/%s", w.PreviousWeek(), w.CurrentWeek())
}

// calendarDate keeps the calendar day of t as seen in its own location
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
