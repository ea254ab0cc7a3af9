package store

import "time"

// dayKey truncates a timestamp to its local calendar day.
func dayKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// fillDayCounts expands a sparse per-day count map into exactly `days`
// contiguous entries ending at `now`'s day, oldest first. Missing days get
// count 0 so chart consumers never have to gap-fill.
func fillDayCounts(counts map[time.Time]int, days int, now time.Time) []DayCount {
	if days <= 0 {
		return []DayCount{}
	}

	out := make([]DayCount, 0, days)
	today := dayKey(now)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		out = append(out, DayCount{Date: day, Count: counts[day]})
	}
	return out
}
