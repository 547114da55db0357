package delivery

import (
	"context"
	"time"

	"github.com/r-sadik/deliverywindow/internal/model"
)

// Result is the outcome of one range scan. AvailableDates preserves scan order
// (earliest first); every scanned date lands in exactly one of the two lists,
// and each excluded date carries exactly one reason.
type Result struct {
	AvailableDates  []string
	ExcludedDates   []string
	NextValidDate   string // "" when no date in the window is available
	ExcludedReasons map[string]string
}

func emptyResult() Result {
	return Result{
		AvailableDates:  []string{},
		ExcludedDates:   []string{},
		ExcludedReasons: map[string]string{},
	}
}

// DisabledResult is returned by callers when a product override disables the
// picker entirely; the engine itself is never invoked in that case.
func DisabledResult() Result {
	return emptyResult()
}

func (r *Result) exclude(date, reason string) {
	r.ExcludedDates = append(r.ExcludedDates, date)
	r.ExcludedReasons[date] = reason
}

// ComputeAvailability scans shop-local calendar days from today through
// today+maxDaysAhead and sorts each into available or excluded. When the
// cutoff has passed, today is excluded with the cutoff reason and the scan
// starts tomorrow; the horizon stays put, so every date the scan offers is
// one the single-date validator would also accept. Settings and blackouts are
// the caller's snapshot for this call; capacity is read once per candidate
// date through counts.
func ComputeAvailability(ctx context.Context, settings model.ShopSettings, overrides *model.ProductOverrides, blackouts []model.BlackoutEntry, counts CapacityLookup, now time.Time) (Result, error) {
	rules, err := newRuleSet(settings, overrides, blackouts, counts)
	if err != nil {
		return Result{}, err
	}

	today := LocalDate(now, rules.loc)
	minutesNow := MinutesSinceMidnight(now, rules.loc)

	res := emptyResult()
	current := today
	if minutesNow >= rules.cutoffMinutes {
		res.exclude(today, ReasonCutoff)
		current, err = AddCalendarDays(today, 1, rules.loc)
		if err != nil {
			return Result{}, err
		}
	}

	horizon, err := AddCalendarDays(today, rules.maxDaysAhead, rules.loc)
	if err != nil {
		return Result{}, err
	}

	// YYYY-MM-DD compares correctly as a string.
	for current <= horizon {
		reason, err := rules.dayReason(ctx, current)
		if err != nil {
			return Result{}, err
		}
		if reason == "" {
			res.AvailableDates = append(res.AvailableDates, current)
			if res.NextValidDate == "" {
				res.NextValidDate = current
			}
		} else {
			res.exclude(current, reason)
		}
		current, err = AddCalendarDays(current, 1, rules.loc)
		if err != nil {
			return Result{}, err
		}
	}
	return res, nil
}
