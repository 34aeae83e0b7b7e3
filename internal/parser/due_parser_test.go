package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDateAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"15/12/2024", time.Date(2024, 12, 15, 23, 59, 59, 0, time.UTC)},
		{"1 day", time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC)},
		{"2 weeks", time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)},
		{"5 hours", time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDueDateAt(tt.input, now)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	for _, bad := range []string{"31/02/2024", "0 days", "tomorrow", "1/13/2024"} {
		_, err := ParseDueDateAt(bad, now)
		assert.Error(t, err, bad)
	}

	empty, err := ParseDueDateAt("", now)
	assert.NoError(t, err)
	assert.Nil(t, empty)
}

func TestParseISODate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-14", time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)},
		{"2024-01-14T09:30:00Z", time.Date(2024, 1, 14, 9, 30, 0, 0, time.UTC)},
		{"2024-01-14T09:30:00+02:00", time.Date(2024, 1, 14, 7, 30, 0, 0, time.UTC)},
		{"2024-01-14T09:30:00", time.Date(2024, 1, 14, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseISODate(tt.input)
		require.NoError(t, err, tt.input)
		assert.True(t, tt.want.Equal(got), tt.input)
	}

	_, err := ParseISODate("14/01/2024")
	assert.Error(t, err)
}

func TestFormatDueDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		d := now.AddDate(0, 0, days)
		return &d
	}

	assert.Equal(t, "", FormatDueDate(nil, now))
	assert.Contains(t, FormatDueDate(at(-1), now), "OVERDUE")
	assert.Contains(t, FormatDueDate(at(0), now), "Due today")
	assert.Contains(t, FormatDueDate(at(1), now), "Due tomorrow")
	assert.Contains(t, FormatDueDate(at(3), now), "in 3 days")
	assert.Equal(t, "📅 Due 10/04/2024", FormatDueDate(at(31), now))
}
