// Package delivery holds the availability rules shared by the range scan and
// the single-date validation. Both paths resolve parameters and evaluate each
// day through the same rule set, so their verdicts cannot diverge.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/r-sadik/deliverywindow/internal/model"
)

// Exclusion reasons shown to the storefront. Exactly one is reported per
// excluded date, chosen by fixed precedence.
const (
	ReasonCutoff    = "Ordering window closed for today"
	ReasonBlackout  = "Blackout date"
	ReasonWeekend   = "Weekend delivery disabled"
	ReasonCapacity  = "This date is fully booked"
	ReasonBeyondMax = "Date is beyond the maximum allowed days ahead"
	ReasonPast      = "Date is in the past"
)

// ErrInvalidDate marks a candidate that is not a YYYY-MM-DD calendar date.
// Callers treat it as a bad request, not a business rejection.
var ErrInvalidDate = errors.New("invalid delivery date format")

// CapacityLookup returns the number of orders already recorded for a calendar
// date. The scan calls it once per candidate day.
type CapacityLookup func(ctx context.Context, date string) (int, error)

// ruleSet is the resolved parameter snapshot for one engine or validator call.
// Settings and blackouts are fetched once by the caller and never re-read
// mid-scan.
type ruleSet struct {
	loc           *time.Location
	cutoffMinutes int
	maxDaysAhead  int
	dailyCapacity int
	allowWeekend  bool
	blackouts     []model.BlackoutEntry
	counts        CapacityLookup
}

func newRuleSet(settings model.ShopSettings, overrides *model.ProductOverrides, blackouts []model.BlackoutEntry, counts CapacityLookup) (*ruleSet, error) {
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load shop timezone %q: %w", settings.Timezone, err)
	}

	cutoffMinutes, err := parseCutoff(settings.CutoffTime)
	if err != nil {
		return nil, err
	}

	rs := &ruleSet{
		loc:           loc,
		cutoffMinutes: cutoffMinutes,
		maxDaysAhead:  settings.MaxDaysAhead,
		dailyCapacity: settings.DailyCapacity,
		allowWeekend:  settings.AllowWeekendDelivery,
		blackouts:     blackouts,
		counts:        counts,
	}
	if overrides != nil {
		if overrides.CutoffHours != nil {
			rs.cutoffMinutes = *overrides.CutoffHours * 60
		}
		if overrides.MaxDaysAhead != nil {
			rs.maxDaysAhead = *overrides.MaxDaysAhead
		}
		if overrides.DailyCapacity != nil {
			rs.dailyCapacity = *overrides.DailyCapacity
		}
	}
	return rs, nil
}

// parseCutoff converts "HH:MM" to minutes since midnight.
func parseCutoff(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("cutoff time %q is not HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("cutoff time %q is not HH:MM", s)
	}
	mins, err := strconv.Atoi(m)
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("cutoff time %q is not HH:MM", s)
	}
	return hours*60 + mins, nil
}

// dayReason applies the per-day precedence: blackout, then weekend, then
// capacity. An empty reason means the date is deliverable. The cutoff and
// range-bound rules sit outside because they depend on "now", not the day.
func (r *ruleSet) dayReason(ctx context.Context, date string) (string, error) {
	if IsBlackedOut(date, r.blackouts) {
		return ReasonBlackout, nil
	}
	if !r.allowWeekend {
		weekend, err := IsWeekend(date)
		if err != nil {
			return "", err
		}
		if weekend {
			return ReasonWeekend, nil
		}
	}
	count, err := r.counts(ctx, date)
	if err != nil {
		return "", fmt.Errorf("delivery count for %s: %w", date, err)
	}
	if count >= r.dailyCapacity {
		return ReasonCapacity, nil
	}
	return "", nil
}
