package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncateToDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	assert.NoError(t, err)

	ts := time.Date(2025, 3, 14, 17, 45, 12, 999, loc)
	got := TruncateToDay(ts)

	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		days int
	}{
		{
			name: "same day",
			a:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC),
			days: 0,
		},
		{
			name: "one month",
			a:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			days: 31,
		},
		{
			name: "across year boundary",
			a:    time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			days: 3,
		},
		{
			name: "reversed is negative",
			a:    time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			days: -31,
		},
		{
			name: "mixed timezones compare calendar dates",
			a:    time.Date(2025, 6, 1, 23, 0, 0, 0, time.FixedZone("UTC-6", -6*3600)),
			b:    time.Date(2025, 6, 3, 1, 0, 0, 0, time.UTC),
			days: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.days, DaysBetween(tt.a, tt.b))
		})
	}
}
