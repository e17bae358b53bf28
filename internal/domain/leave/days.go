package leave

import "time"

// CountDays returns the inclusive day count of a leave range. A half-day
// request on a single-day span counts 0.5; on a longer span the half-day
// discount applies to the last day only. The count is computed once at
// submission and is immutable except through an explicit edit.
func CountDays(start, end time.Time, halfDay bool) (float64, error) {
	if end.Before(start) {
		return 0, &ValidationError{Field: "endDate", Reason: "end date before start date"}
	}

	base := float64(daysBetween(start, end) + 1)
	if !halfDay {
		return base, nil
	}
	if base == 1 {
		return 0.5, nil
	}
	return base - 0.5, nil
}

func daysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
