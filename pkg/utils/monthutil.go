package utils

import (
	"time"
)

// Date-convention helpers. Production months arrive keyed to the first of
// the month while price decks are keyed to the last day of the month; every
// join in the economics pipeline first pushes both sides through MonthEnd.

// MonthEnd returns the last day of t's calendar month at midnight UTC.
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
}

// MonthStart returns the first day of t's calendar month at midnight UTC.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts t by n calendar months and re-floors to month end.
// Going through MonthStart first avoids the AddDate day-overflow surprise
// (Jan 31 + 1 month must be Feb 28/29, not Mar 2/3).
func AddMonths(t time.Time, n int) time.Time {
	return MonthEnd(MonthStart(t).AddDate(0, n, 0))
}

// MonthsBetween returns the number of whole calendar months from a to b.
// Negative if b is before a.
func MonthsBetween(a, b time.Time) int {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return (by-ay)*12 + int(bm) - int(am)
}

// MonthEndGrid returns every month-end date from the month of `from`
// through the month of `to`, inclusive, in chronological order.
func MonthEndGrid(from, to time.Time) []time.Time {
	start := MonthEnd(from)
	end := MonthEnd(to)
	if end.Before(start) {
		return nil
	}
	n := MonthsBetween(start, end) + 1
	grid := make([]time.Time, 0, n)
	for cur := start; !cur.After(end); cur = AddMonths(cur, 1) {
		grid = append(grid, cur)
	}
	return grid
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// FormatDate renders t as the portal's wire date format, YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD wire date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
