package interval

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End).
// A reservation ending at 10:00 does not conflict with one starting at 10:00.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New builds an interval and validates End > Start.
func New(start, end time.Time) (Interval, error) {
	ivl := Interval{Start: start, End: end}
	if !ivl.Valid() {
		return Interval{}, fmt.Errorf("interval end %s must be after start %s", end, start)
	}
	return ivl, nil
}

// Valid reports whether End is strictly after Start.
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Contains reports whether o lies entirely within i.
func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Dates returns every calendar date (midnight-truncated, in the interval's
// location) the interval touches. An interval ending exactly at midnight does
// not touch the following day.
func (i Interval) Dates() []time.Time {
	var dates []time.Time
	for cur := startOfDay(i.Start); cur.Before(i.End); cur = cur.AddDate(0, 0, 1) {
		dates = append(dates, cur)
	}
	return dates
}

// TimeOfDay is a clock time expressed as minutes since midnight.
// The value 1440 ("24:00") is legal as a window close.
type TimeOfDay int

const endOfDay TimeOfDay = 24 * 60

// ParseTimeOfDay parses "HH:MM" (and "HH:MM:SS", seconds ignored) into
// minutes since midnight. "24:00" is accepted for window close times.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if s == "24:00" || s == "24:00:00" {
		return endOfDay, nil
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// String formats the time of day as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Window is a daily open interval [Open, Close) in local clock time.
// The zero value means closed for the whole day.
type Window struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// IsClosed reports whether the window admits no time at all.
func (w Window) IsClosed() bool {
	return w.Close <= w.Open
}

// WeekSchedule maps each weekday to its operating window.
// A missing weekday means the resource is closed that day.
type WeekSchedule map[time.Weekday]Window

// Covers reports whether the whole interval fits inside the schedule's
// operating windows. The interval is decomposed at day boundaries, and every
// resulting segment must lie within its weekday's window.
func (s WeekSchedule) Covers(ivl Interval) bool {
	if !ivl.Valid() {
		return false
	}
	for cur := ivl.Start; cur.Before(ivl.End); {
		dayEnd := startOfDay(cur).AddDate(0, 0, 1)

		segEnd := ivl.End
		if dayEnd.Before(segEnd) {
			segEnd = dayEnd
		}

		w, ok := s[cur.Weekday()]
		if !ok || w.IsClosed() {
			return false
		}
		if minutesIntoDay(cur) < w.Open {
			return false
		}

		// round a sub-minute remainder up so an end past the close minute
		// cannot slip through truncation
		endMin := minutesIntoDay(segEnd)
		if segEnd.Second() > 0 || segEnd.Nanosecond() > 0 {
			endMin++
		}
		if segEnd.Equal(dayEnd) {
			endMin = endOfDay
		}
		if endMin > w.Close {
			return false
		}

		cur = dayEnd
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func minutesIntoDay(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}
