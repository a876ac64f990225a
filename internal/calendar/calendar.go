// Package calendar provides bank holiday sources that feed the closure
// resolver in addition to the dates configured on the page.
package calendar

import (
	"time"

	"github.com/username/opening-times/internal/closures"
)

// Source is implemented by every calendar in this package
type Source = closures.HolidaySource

func filterYear(entries []closures.ClosureEntry, year int) []closures.ClosureEntry {
	out := make([]closures.ClosureEntry, 0, len(entries))
	for _, e := range entries {
		if e.Date.Year() == year {
			out = append(out, e)
		}
	}
	return out
}

// dateOnly drops the clock and zone, keeping the calendar date in UTC
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
