package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 3, 10, 17, 45, 12, 99, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), StartOfDay(in))

	t.Run("Converts to UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC-5", -5*3600)
		local := time.Date(2024, 3, 10, 22, 0, 0, 0, loc)
		assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), StartOfDay(local))
	})
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2024, 2, 27, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		to       time.Time
		expected int
	}{
		{"Same day", time.Date(2024, 2, 27, 1, 0, 0, 0, time.UTC), 0},
		{"Next day under 24h", time.Date(2024, 2, 28, 1, 0, 0, 0, time.UTC), 1},
		{"Across leap day", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 3},
		{"Backwards", time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC), -7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(base, tt.to))
		})
	}
}

func TestAddDays(t *testing.T) {
	start := time.Date(2024, 12, 28, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), AddDays(start, 7))
	assert.Equal(t, "2025-01-04", FormatDate(AddDays(start, 7)))
}
