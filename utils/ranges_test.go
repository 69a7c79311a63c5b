package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRangeDays(t *testing.T) {
	for token, want := range map[string]int{"24h": 1, "7d": 7, "30d": 30, "90d": 90} {
		got, ok := RangeDays(token)
		assert.True(t, ok, token)
		assert.Equal(t, want, got, token)
	}
	_, ok := RangeDays("1y")
	assert.False(t, ok)
	_, ok = RangeDays("")
	assert.False(t, ok)
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), WindowStart(now, 1, time.UTC))
	assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), WindowStart(now, 7, nil))

	jakarta := time.FixedZone("WIB", 7*3600)
	// 2024-06-10 20:00 in Jakarta is still the 10th there.
	late := time.Date(2024, 6, 10, 13, 0, 0, 0, time.UTC)
	start := WindowStart(late, 1, jakarta)
	assert.Equal(t, "2024-06-10 00:00:00 +0700", start.Format("2006-01-02 15:04:05 -0700"))
	assert.Equal(t, "2024-06-10", DateKey(late, jakarta))
	// 2024-06-10 18:00 UTC is already the 11th in Jakarta.
	assert.Equal(t, "2024-06-11", DateKey(late.Add(5*time.Hour), jakarta))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 20.5, Round2(20.5))
	assert.Equal(t, 34.17, Round2(102.5/3))
	assert.Equal(t, -1.24, Round2(-1.2449))
}
