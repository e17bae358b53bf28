package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrleave/internal/domain/leave"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCountDays(t *testing.T) {
	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		halfDay bool
		want    float64
	}{
		{"single day", date(2025, time.March, 10), date(2025, time.March, 10), false, 1},
		{"single half day", date(2025, time.March, 10), date(2025, time.March, 10), true, 0.5},
		{"five days", date(2025, time.March, 10), date(2025, time.March, 14), false, 5},
		{"five days ending half", date(2025, time.March, 10), date(2025, time.March, 14), true, 4.5},
		{"two days", date(2025, time.June, 30), date(2025, time.July, 1), false, 2},
		{"across year end", date(2025, time.December, 30), date(2026, time.January, 2), false, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := leave.CountDays(tc.start, tc.end, tc.halfDay)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCountDaysEndBeforeStart(t *testing.T) {
	_, err := leave.CountDays(date(2025, time.March, 14), date(2025, time.March, 10), false)

	var validation *leave.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "endDate", validation.Field)
}

func TestCountDaysIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 11, 0, 15, 0, 0, time.UTC)

	got, err := leave.CountDays(start, end, false)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}
