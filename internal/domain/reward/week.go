package reward

import "time"

const WeekKeyLayout = "2006-01-02"

// WeekStart returns Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	utc := t.UTC()
	offset := (int(utc.Weekday()) + 6) % 7
	day := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// WeekKey is the ISO date of WeekStart. Every weekly partition uses it.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(WeekKeyLayout)
}
