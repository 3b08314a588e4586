package utils

import "time"

// MonthStart returns midnight UTC on the first day of the month
// containing t.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysAgo returns the instant d days before t.
func DaysAgo(t time.Time, d int) time.Time {
	return t.UTC().AddDate(0, 0, -d)
}
