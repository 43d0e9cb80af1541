package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	// 2025-03-10 is a Monday
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	_, err := New(at(10, 0), at(9, 0))
	assert.Error(t, err, "end before start must be rejected")

	_, err = New(at(10, 0), at(10, 0))
	assert.Error(t, err, "zero-length interval must be rejected")

	ivl, err := New(at(9, 0), at(10, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ivl.Duration())
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "identical intervals overlap",
			a:    Interval{at(9, 0), at(10, 0)},
			b:    Interval{at(9, 0), at(10, 0)},
			want: true,
		},
		{
			name: "partial overlap",
			a:    Interval{at(9, 0), at(10, 0)},
			b:    Interval{at(9, 30), at(10, 30)},
			want: true,
		},
		{
			name: "containment overlaps",
			a:    Interval{at(9, 0), at(12, 0)},
			b:    Interval{at(10, 0), at(11, 0)},
			want: true,
		},
		{
			name: "touching boundary does not overlap",
			a:    Interval{at(9, 0), at(10, 0)},
			b:    Interval{at(10, 0), at(11, 0)},
			want: false,
		},
		{
			name: "disjoint intervals",
			a:    Interval{at(9, 0), at(10, 0)},
			b:    Interval{at(14, 0), at(15, 0)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			// overlap is symmetric
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("08:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(8*60+30), tod)
	assert.Equal(t, "08:30", tod.String())

	tod, err = ParseTimeOfDay("18:00:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(18*60), tod)

	tod, err = ParseTimeOfDay("24:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(1440), tod)

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}

func TestWeekScheduleCovers(t *testing.T) {
	allDays := make(WeekSchedule)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		allDays[wd] = Window{Open: 8 * 60, Close: 18 * 60}
	}

	weekdaysOnly := WeekSchedule{
		time.Monday:  {Open: 8 * 60, Close: 18 * 60},
		time.Tuesday: {Open: 8 * 60, Close: 18 * 60},
	}

	tests := []struct {
		name     string
		schedule WeekSchedule
		ivl      Interval
		want     bool
	}{
		{
			name:     "inside window",
			schedule: allDays,
			ivl:      Interval{at(9, 0), at(10, 0)},
			want:     true,
		},
		{
			name:     "exact window boundaries",
			schedule: allDays,
			ivl:      Interval{at(8, 0), at(18, 0)},
			want:     true,
		},
		{
			name:     "starts before open",
			schedule: allDays,
			ivl:      Interval{at(7, 30), at(9, 0)},
			want:     false,
		},
		{
			name:     "ends after close",
			schedule: allDays,
			ivl:      Interval{at(17, 0), at(19, 0)},
			want:     false,
		},
		{
			name:     "entirely after close",
			schedule: allDays,
			ivl:      Interval{at(19, 0), at(20, 0)},
			want:     false,
		},
		{
			name:     "multi-day span fails daytime-only window",
			schedule: allDays,
			ivl:      Interval{at(9, 0), at(9, 0).AddDate(0, 0, 1)},
			want:     false,
		},
		{
			name:     "closed weekday rejected",
			schedule: weekdaysOnly,
			// Wednesday has no window
			ivl:  Interval{at(9, 0).AddDate(0, 0, 2), at(10, 0).AddDate(0, 0, 2)},
			want: false,
		},
		{
			name:     "open weekday accepted",
			schedule: weekdaysOnly,
			ivl:      Interval{at(9, 0).AddDate(0, 0, 1), at(10, 0).AddDate(0, 0, 1)},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schedule.Covers(tt.ivl))
		})
	}
}

func TestCoversSecondPrecision(t *testing.T) {
	allDays := make(WeekSchedule)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		allDays[wd] = Window{Open: 8 * 60, Close: 18 * 60}
	}

	// ending seconds past the close minute is outside the window
	ivl := Interval{at(17, 0), at(18, 0).Add(59 * time.Second)}
	assert.False(t, allDays.Covers(ivl))

	// a sub-minute end strictly inside the window is fine
	ivl = Interval{at(17, 0), at(17, 59).Add(59 * time.Second)}
	assert.True(t, allDays.Covers(ivl))

	// starting seconds before the open minute is outside too
	ivl = Interval{at(7, 59).Add(59 * time.Second), at(9, 0)}
	assert.False(t, allDays.Covers(ivl))
}

func TestCoversAroundMidnight(t *testing.T) {
	roundTheClock := make(WeekSchedule)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		roundTheClock[wd] = Window{Open: 0, Close: 1440}
	}

	// spans two calendar days, both fully open
	ivl := Interval{at(22, 0), at(2, 0).AddDate(0, 0, 1)}
	assert.True(t, roundTheClock.Covers(ivl))

	// ends exactly at midnight: only touches the first day
	ivl = Interval{at(22, 0), at(0, 0).AddDate(0, 0, 1)}
	assert.True(t, roundTheClock.Covers(ivl))
	assert.Len(t, ivl.Dates(), 1)
}

func TestDates(t *testing.T) {
	ivl := Interval{at(9, 0), at(10, 0)}
	require.Len(t, ivl.Dates(), 1)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), ivl.Dates()[0])

	ivl = Interval{at(9, 0), at(10, 0).AddDate(0, 0, 2)}
	assert.Len(t, ivl.Dates(), 3)
}
