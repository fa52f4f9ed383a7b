package store

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func TestWeekBucket(t *testing.T) {
	cases := []struct {
		in         time.Time
		year, week int
	}{
		// 2023-01-01 is a Sunday, so weeks align with the calendar year.
		{date(2023, time.January, 1), 2023, 1},
		{date(2023, time.January, 7), 2023, 1},  // Saturday, same week
		{date(2023, time.January, 8), 2023, 2},  // next Sunday
		{date(2023, time.December, 31), 2023, 53},
		// 2024 starts on a Monday; its first Sunday is January 7.
		{date(2024, time.January, 7), 2024, 1},
		{date(2024, time.July, 10), 2024, 27},
		{date(2024, time.December, 29), 2024, 52}, // final Sunday of 2024
		// The partial week before 2025's first Sunday folds back into 2024.
		{date(2025, time.January, 1), 2024, 52},
		{date(2025, time.January, 3), 2024, 52},
		{date(2025, time.January, 5), 2025, 1},
	}
	for _, c := range cases {
		year, week := WeekBucket(c.in)
		if year != c.year || week != c.week {
			t.Errorf("WeekBucket(%s) = (%d, %d), want (%d, %d)",
				c.in.Format(DateLayout), year, week, c.year, c.week)
		}
	}
}

func TestWeekBucketDaysShareWeek(t *testing.T) {
	// Sunday 2024-03-03 through Saturday 2024-03-09 all land in one bucket.
	wantYear, wantWeek := WeekBucket(date(2024, time.March, 3))
	for d := 3; d <= 9; d++ {
		year, week := WeekBucket(date(2024, time.March, d))
		if year != wantYear || week != wantWeek {
			t.Errorf("2024-03-%02d = (%d, %d), want (%d, %d)", d, year, week, wantYear, wantWeek)
		}
	}
	year, week := WeekBucket(date(2024, time.March, 10))
	if year == wantYear && week == wantWeek {
		t.Error("next Sunday landed in the same week bucket")
	}
}

func TestWeekStartRoundTrip(t *testing.T) {
	cases := []struct {
		year, week int
		want       string
	}{
		{2023, 1, "2023-01-01"},
		{2024, 1, "2024-01-07"},
		{2024, 52, "2024-12-29"},
		{2025, 1, "2025-01-05"},
	}
	for _, c := range cases {
		start := WeekStart(c.year, c.week)
		if got := start.Format(DateLayout); got != c.want {
			t.Errorf("WeekStart(%d, %d) = %s, want %s", c.year, c.week, got, c.want)
		}
		year, week := WeekBucket(start)
		if year != c.year || week != c.week {
			t.Errorf("WeekBucket(WeekStart(%d, %d)) = (%d, %d)", c.year, c.week, year, week)
		}
	}
}
