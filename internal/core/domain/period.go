package domain

import (
	"errors"
	"time"
)

// ErrPeriodInverted is returned when a window starts after it ends.
var ErrPeriodInverted = errors.New("period start is after period end")

// endOfDay is the offset from midnight to the last millisecond of the day.
const endOfDay = 24*time.Hour - time.Millisecond

// PeriodWindow is an inclusive date range. Only the calendar dates of
// Start and End are significant.
type PeriodWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriodWindow truncates both bounds to their calendar date and validates
// the ordering.
func NewPeriodWindow(start, end time.Time) (*PeriodWindow, error) {
	w := &PeriodWindow{Start: truncateDay(start), End: truncateDay(end)}
	if w.Start.After(w.End) {
		return nil, ErrPeriodInverted
	}
	return w, nil
}

// Contains reports whether t falls within the window. The end boundary runs
// through 23:59:59.999 of the end date.
func (w *PeriodWindow) Contains(t time.Time) bool {
	if w == nil {
		return false
	}
	last := w.End.Add(endOfDay)
	return !t.Before(w.Start) && !t.After(last)
}

// Days returns the number of calendar days covered by the window.
func (w *PeriodWindow) Days() int {
	if w == nil {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
