package utils

import (
	"math"
	"time"
)

const DefaultRange = "7d"

var rangeDays = map[string]int{
	"24h": 1,
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// RangeDays returns the number of calendar days covered by a range token.
func RangeDays(token string) (int, bool) {
	days, ok := rangeDays[token]
	return days, ok
}

// WindowStart returns the first instant of a window of days calendar dates
// ending today in loc. A one-day window starts at today's midnight.
func WindowStart(now time.Time, days int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, -(days - 1))
}

// DateKey formats t as a calendar date in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

// Round2 rounds to two decimals, the precision readings are stored with.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
