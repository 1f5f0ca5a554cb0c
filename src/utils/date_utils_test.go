package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"ISO", "2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"slash US default", "5/1/2024", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"slash day first when first component exceeds 12", "13/1/2024", time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), false},
		{"slash month first when second component exceeds 12", "1/13/2024", time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), false},
		{"slash two-digit year", "5/1/24", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"dash UK", "01-05-2024", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"whitespace tolerated", " 2024-05-01 ", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"empty", "", time.Time{}, true},
		{"garbage", "yesterday", time.Time{}, true},
		{"impossible slash date", "13/13/2024", time.Time{}, true},
		{"overflowing dash date", "31-02-2024", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlexibleDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 19, DaysBetween(a, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, DaysBetween(a, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, DaysBetween(a, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, DaysBetween(a, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)))
}

func TestSameCalendarDay(t *testing.T) {
	a := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC)
	c := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameCalendarDay(a, b))
	assert.False(t, SameCalendarDay(a, c))
}

func TestRoundGBP(t *testing.T) {
	assert.Equal(t, 10007.69, RoundGBP(13010.0/1.3))
	assert.Equal(t, 0.1, RoundFloat(0.10000000001, 2))
	assert.Equal(t, 1.01, RoundGBP(1.006))
	assert.Equal(t, -2.35, RoundGBP(-2.345000001))
}
