package store

import "time"

// Payroll weeks run Sunday through Saturday and are numbered from the first
// Sunday on or after January 1, so week boundaries are always Sundays rather
// than library calendar weeks. A date in the partial week before its year's
// first Sunday belongs to the final week (52 or 53) of the previous year.
//
// WeekBucket implements that rule by snapping the date to the Sunday opening
// its week: the Sunday's own year and Sunday-index give the bucket, and the
// cross-year fold happens naturally because that Sunday lies in the previous
// year for partial-week dates.
func WeekBucket(t time.Time) (year, week int) {
	sunday := t.AddDate(0, 0, -int(t.Weekday()))
	year = sunday.Year()
	week = (sunday.YearDay()-firstSundayYearDay(year))/7 + 1
	return year, week
}

// WeekStart returns the Sunday that opens the given payroll week.
func WeekStart(year, week int) time.Time {
	first := time.Date(year, time.January, firstSundayYearDay(year), 0, 0, 0, 0, time.Local)
	return first.AddDate(0, 0, (week-1)*7)
}

// firstSundayYearDay returns the day-of-year of the first Sunday on or after
// January 1.
func firstSundayYearDay(year int) int {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	return 1 + (7-int(jan1.Weekday()))%7
}
