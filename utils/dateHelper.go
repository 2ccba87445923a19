package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date helpers for the month and year-to-date windows used by every
// aggregation. All dates are UTC calendar dates.

type YearMonth struct {
	Year  int
	Month int
}

func CurrentYear() int {
	return time.Now().UTC().Year()
}

func CurrentMonth() int {
	return int(time.Now().UTC().Month())
}

func FirstDayOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth handles variable month lengths and leap years:
// day zero of the following month is the last day of this one.
func LastDayOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC)
}

func MonthRange(year, month int) (time.Time, time.Time) {
	return FirstDayOfMonth(year, month), LastDayOfMonth(year, month)
}

// YTDRange returns [Jan 1, end] for the given year. For the current year the
// end is today (a moving window); for past years it is Dec 31 of that year.
// Future years yield an empty window (end before start).
func YTDRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	switch {
	case year < now.Year():
		return start, time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	case year == now.Year():
		return start, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return start, start.AddDate(0, 0, -1)
	}
}

// MonthsElapsed lists the (year, month) pairs covered so far: all 12 for past
// years, January through the current month for the current year, none for
// future years.
func MonthsElapsed(year int) []YearMonth {
	now := time.Now().UTC()
	var last int
	switch {
	case year < now.Year():
		last = 12
	case year == now.Year():
		last = int(now.Month())
	default:
		return nil
	}

	months := make([]YearMonth, 0, last)
	for m := 1; m <= last; m++ {
		months = append(months, YearMonth{Year: year, Month: m})
	}
	return months
}

// FormatMonthLabel renders a (year, month) pair as "2025-01".
func FormatMonthLabel(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

func ParseMonthLabel(label string) (int, int, error) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month label %q", label)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month label %q", label)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month label %q", label)
	}
	return year, month, nil
}
