package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay_DateString(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{
			name:     "date 2024-12-12",
			date:     time.Date(2024, 12, 12, 10, 0, 0, 0, time.UTC),
			expected: "2024-12-12",
		},
		{
			name:     "date 2024-01-01",
			date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: "2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := DayOf(tt.date, time.UTC)
			assert.Equal(t, tt.expected, day.DateString())
		})
	}
}

func TestDayOf_UsesLocation(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	// 20:00 UTC is already the next day in Shanghai.
	ts := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-09", DayOf(ts, time.UTC).DateString())
	assert.Equal(t, "2024-03-10", DayOf(ts, shanghai).DateString())
}

func TestDay_Bounds(t *testing.T) {
	day := DayOf(time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC), time.UTC)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), day.StartMillis())
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC).UnixMilli(), day.EndMillis())
	assert.Equal(t, "2024-04-30", day.AddDays(-1).DateString())
}

func TestDay_DisplayString(t *testing.T) {
	now := time.Date(2024, 6, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{
			name:     "today",
			date:     now,
			expected: "Today",
		},
		{
			name:     "yesterday",
			date:     now.AddDate(0, 0, -1),
			expected: "Yesterday",
		},
		{
			name:     "specific date",
			date:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			expected: "15 Jun 2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := DayOf(tt.date, time.UTC)
			assert.Equal(t, tt.expected, day.DisplayString(now))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		loc      *time.Location
		expected int
	}{
		{
			name:     "same day",
			from:     time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
			to:       time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
			loc:      time.UTC,
			expected: 0,
		},
		{
			name:     "late evening to early morning crosses one boundary",
			from:     time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC),
			to:       time.Date(2024, 1, 2, 0, 30, 0, 0, time.UTC),
			loc:      time.UTC,
			expected: 1,
		},
		{
			name:     "across DST change",
			from:     time.Date(2024, 3, 9, 12, 0, 0, 0, ny),
			to:       time.Date(2024, 3, 11, 12, 0, 0, 0, ny),
			loc:      ny,
			expected: 2,
		},
		{
			name:     "negative when reversed",
			from:     time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			loc:      time.UTC,
			expected: -2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.from, tt.to, tt.loc))
		})
	}
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2024-02-29", time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", day.DateString())

	_, err = ParseDay("20240229", time.UTC)
	assert.ErrorIs(t, err, ErrValidation)
}
