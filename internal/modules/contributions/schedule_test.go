package contributions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDue(t *testing.T) {
	// Wednesday
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency string
		want      time.Time
	}{
		{"weekly", time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)},
		{"Biweekly", time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC)},
		{" monthly ", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"quarterly", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"annually", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"yearly", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			got := NextDue(tt.frequency, now)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestNextDue_QuarterlyAfterApril(t *testing.T) {
	now := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	got := NextDue("quarterly", now)
	require.NotNil(t, got)
	assert.Equal(t, time.July, got.Month())
	assert.Equal(t, 1, got.Day())
}

func TestNextDue_Unknown(t *testing.T) {
	assert.Nil(t, NextDue("fortnightly-ish", time.Now()))
	assert.False(t, ValidFrequency(""))
	assert.True(t, ValidFrequency("MONTHLY"))
}
