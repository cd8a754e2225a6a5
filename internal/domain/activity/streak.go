package activity

import (
	"sort"
	"time"
)

// CurrentStreak counts consecutive active days ending today or yesterday.
// days holds distinct day keys in any order.
func CurrentStreak(days []string, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}

	cursor := now.UTC().Truncate(24 * time.Hour)
	if _, ok := set[DayKey(cursor)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
		if _, ok := set[DayKey(cursor)]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := set[DayKey(cursor)]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

// ActiveDaysSince counts distinct day keys on or after the day of since.
func ActiveDaysSince(days []string, since time.Time) int {
	floor := DayKey(since)
	sorted := append([]string(nil), days...)
	sort.Strings(sorted)

	count := 0
	prev := ""
	for _, d := range sorted {
		if d == prev {
			continue
		}
		prev = d
		if d >= floor {
			count++
		}
	}
	return count
}
