package store

import (
	"fmt"
	"time"
)

// MonthRange parses "YYYY-MM" into the UTC start of the month and the last
// second of its final day, the window a monthly backtest queries.
func MonthRange(month string) (from, to time.Time, err error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month format %q, use YYYY-MM: %w", month, err)
	}
	from = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0).Add(-time.Second)
	return from, to, nil
}
