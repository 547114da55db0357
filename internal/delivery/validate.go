package delivery

import (
	"context"
	"time"

	"github.com/r-sadik/deliverywindow/internal/model"
)

// Verdict is the outcome of a single-date re-check at order time.
type Verdict struct {
	Valid  bool
	Reason string
}

// ValidateDate re-checks a customer-submitted date with the same rule set and
// precedence as the range scan, plus the two bounds the scan never reaches:
// beyond maxDaysAhead and in the past. Check order is significant — cutoff,
// blackout, weekend, capacity, then range bounds — so a date violating several
// rules reports the same reason the scan would have attached.
//
// A candidate that is not a calendar date at all returns ErrInvalidDate rather
// than a rejection verdict.
func ValidateDate(ctx context.Context, settings model.ShopSettings, overrides *model.ProductOverrides, blackouts []model.BlackoutEntry, counts CapacityLookup, candidate string, now time.Time) (Verdict, error) {
	if _, err := ParseDate(candidate); err != nil {
		return Verdict{}, ErrInvalidDate
	}

	rules, err := newRuleSet(settings, overrides, blackouts, counts)
	if err != nil {
		return Verdict{}, err
	}

	today := LocalDate(now, rules.loc)
	minutesNow := MinutesSinceMidnight(now, rules.loc)

	if candidate == today && minutesNow >= rules.cutoffMinutes {
		return Verdict{Reason: ReasonCutoff}, nil
	}

	reason, err := rules.dayReason(ctx, candidate)
	if err != nil {
		return Verdict{}, err
	}
	if reason != "" {
		return Verdict{Reason: reason}, nil
	}

	daysDiff, err := DaysBetween(today, candidate)
	if err != nil {
		return Verdict{}, err
	}
	if daysDiff > rules.maxDaysAhead {
		return Verdict{Reason: ReasonBeyondMax}, nil
	}
	if daysDiff < 0 {
		return Verdict{Reason: ReasonPast}, nil
	}
	return Verdict{Valid: true}, nil
}
