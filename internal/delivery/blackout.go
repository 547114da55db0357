package delivery

import (
	"strings"

	"github.com/r-sadik/deliverywindow/internal/model"
)

// monthDay reduces "YYYY-MM-DD" or a bare "MM-DD" to its month-day component.
// Comparison is plain substring equality, so a recurring Feb 29 entry only
// ever matches a candidate Feb 29 (i.e. leap years).
func monthDay(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) >= 3 {
		return parts[1] + "-" + parts[2]
	}
	return date
}

// IsBlackedOut reports whether the candidate date is excluded by any entry.
// One-off entries match the full date; recurring entries match by month-day in
// every year. First match wins.
func IsBlackedOut(date string, entries []model.BlackoutEntry) bool {
	md := monthDay(date)
	for _, e := range entries {
		if e.Recurring {
			if monthDay(e.Date) == md {
				return true
			}
		} else if e.Date == date {
			return true
		}
	}
	return false
}
