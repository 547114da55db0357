package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/r-sadik/deliverywindow/internal/model"
)

func countsFromMap(m map[string]int) CapacityLookup {
	return func(_ context.Context, date string) (int, error) {
		return m[date], nil
	}
}

func noCounts(_ context.Context, _ string) (int, error) { return 0, nil }

func baseSettings() model.ShopSettings {
	return model.ShopSettings{
		CutoffTime:           "14:00",
		DailyCapacity:        50,
		MaxDaysAhead:         3,
		AllowWeekendDelivery: false,
		Timezone:             "UTC",
	}
}

// 2024-06-03 is a Monday.
var mondayMorning = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func TestComputeAvailability_BeforeCutoffIncludesToday(t *testing.T) {
	res, err := ComputeAvailability(context.Background(), baseSettings(), nil, nil, noCounts, mondayMorning)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}

	want := []string{"2024-06-03", "2024-06-04", "2024-06-05", "2024-06-06"}
	if len(res.AvailableDates) != len(want) {
		t.Fatalf("expected %d available dates, got %d: %v", len(want), len(res.AvailableDates), res.AvailableDates)
	}
	for i, d := range want {
		if res.AvailableDates[i] != d {
			t.Errorf("available[%d] = %s, want %s", i, res.AvailableDates[i], d)
		}
	}
	if len(res.ExcludedDates) != 0 {
		t.Errorf("expected no exclusions, got %v", res.ExcludedDates)
	}
	if res.NextValidDate != "2024-06-03" {
		t.Errorf("nextValidDate = %q, want 2024-06-03", res.NextValidDate)
	}
}

func TestComputeAvailability_AfterCutoffExcludesToday(t *testing.T) {
	afterCutoff := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	res, err := ComputeAvailability(context.Background(), baseSettings(), nil, nil, noCounts, afterCutoff)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}

	if res.ExcludedReasons["2024-06-03"] != ReasonCutoff {
		t.Errorf("today's reason = %q, want %q", res.ExcludedReasons["2024-06-03"], ReasonCutoff)
	}
	// The horizon stays at today+maxDaysAhead even though the scan starts
	// tomorrow, so the validator agrees with every offered date.
	want := []string{"2024-06-04", "2024-06-05", "2024-06-06"}
	if len(res.AvailableDates) != len(want) {
		t.Fatalf("expected %d available dates, got %v", len(want), res.AvailableDates)
	}
	for i, d := range want {
		if res.AvailableDates[i] != d {
			t.Errorf("available[%d] = %s, want %s", i, res.AvailableDates[i], d)
		}
	}
	if res.NextValidDate != "2024-06-04" {
		t.Errorf("nextValidDate = %q, want 2024-06-04", res.NextValidDate)
	}
}

func TestComputeAvailability_ExactlyAtCutoffExcludesToday(t *testing.T) {
	atCutoff := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	res, err := ComputeAvailability(context.Background(), baseSettings(), nil, nil, noCounts, atCutoff)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}
	if res.ExcludedReasons["2024-06-03"] != ReasonCutoff {
		t.Errorf("14:00 sharp should close today's window, got %v", res.ExcludedReasons)
	}
}

func TestComputeAvailability_WeekendsExcluded(t *testing.T) {
	settings := baseSettings()
	settings.MaxDaysAhead = 6 // scan Monday through Sunday

	res, err := ComputeAvailability(context.Background(), settings, nil, nil, noCounts, mondayMorning)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}
	if res.ExcludedReasons["2024-06-08"] != ReasonWeekend {
		t.Errorf("Saturday reason = %q, want %q", res.ExcludedReasons["2024-06-08"], ReasonWeekend)
	}
	if res.ExcludedReasons["2024-06-09"] != ReasonWeekend {
		t.Errorf("Sunday reason = %q, want %q", res.ExcludedReasons["2024-06-09"], ReasonWeekend)
	}
	if len(res.AvailableDates) != 5 {
		t.Errorf("expected 5 weekday dates, got %v", res.AvailableDates)
	}

	settings.AllowWeekendDelivery = true
	res, err = ComputeAvailability(context.Background(), settings, nil, nil, noCounts, mondayMorning)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}
	if len(res.AvailableDates) != 7 {
		t.Errorf("with weekends enabled expected 7 dates, got %v", res.AvailableDates)
	}
}

func TestComputeAvailability_BlackoutBeatsWeekend(t *testing.T) {
	settings := baseSettings()
	settings.MaxDaysAhead = 6
	blackouts := []model.BlackoutEntry{{Date: "2024-06-08", Recurring: false}} // a Saturday

	res, err := ComputeAvailability(context.Background(), settings, nil, blackouts, noCounts, mondayMorning)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}
	if res.ExcludedReasons["2024-06-08"] != ReasonBlackout {
		t.Errorf("blackout must take precedence over weekend, got %q", res.ExcludedReasons["2024-06-08"])
	}
}

func TestComputeAvailability_CapacityMet(t *testing.T) {
	settings := baseSettings()
	settings.DailyCapacity = 2
	counts := countsFromMap(map[string]int{
		"2024-06-04": 2, // full
		"2024-06-05": 1, // one slot left
	})

	res, err := ComputeAvailability(context.Background(), settings, nil, nil, counts, mondayMorning)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}
	if res.ExcludedReasons["2024-06-04"] != ReasonCapacity {
		t.Errorf("full date reason = %q, want %q", res.ExcludedReasons["2024-06-04"], ReasonCapacity)
	}
	for _, d := range res.AvailableDates {
		if d == "2024-06-04" {
			t.Error("full date must not be available")
		}
	}
	found := false
	for _, d := range res.AvailableDates {
		if d == "2024-06-05" {
			found = true
		}
	}
	if !found {
		t.Error("date under capacity should be available")
	}
}

func TestComputeAvailability_MaxDaysAheadZero(t *testing.T) {
	settings := baseSettings()
	settings.MaxDaysAhead = 0

	res, err := ComputeAvailability(context.Background(), settings, nil, nil, noCounts, mondayMorning)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}
	if len(res.AvailableDates) != 1 || res.AvailableDates[0] != "2024-06-03" {
		t.Errorf("maxDaysAhead=0 before cutoff should offer only today, got %v", res.AvailableDates)
	}
}

func TestComputeAvailability_ProductOverrides(t *testing.T) {
	cutoffHours := 9 // earlier than the shop's 14:00
	maxDays := 1
	capacity := 1
	overrides := &model.ProductOverrides{
		CutoffHours:   &cutoffHours,
		MaxDaysAhead:  &maxDays,
		DailyCapacity: &capacity,
	}
	counts := countsFromMap(map[string]int{"2024-06-04": 1})

	res, err := ComputeAvailability(context.Background(), baseSettings(), overrides, nil, counts, mondayMorning)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}
	// 10:00 is past the overridden 09:00 cutoff, so today is gone; tomorrow
	// (the only other in-range day) is at its overridden capacity.
	if res.ExcludedReasons["2024-06-03"] != ReasonCutoff {
		t.Errorf("override cutoff should exclude today, got %v", res.ExcludedReasons)
	}
	if res.ExcludedReasons["2024-06-04"] != ReasonCapacity {
		t.Errorf("override capacity should exclude tomorrow, got %v", res.ExcludedReasons)
	}
	if len(res.AvailableDates) != 0 {
		t.Errorf("expected no available dates, got %v", res.AvailableDates)
	}
	if res.NextValidDate != "" {
		t.Errorf("nextValidDate = %q, want empty", res.NextValidDate)
	}
}

func TestComputeAvailability_ShopLocalToday(t *testing.T) {
	settings := baseSettings()
	settings.Timezone = "America/Los_Angeles"

	// 02:00 UTC on June 4 is 19:00 June 3 in LA: past the 14:00 cutoff there.
	now := time.Date(2024, 6, 4, 2, 0, 0, 0, time.UTC)
	res, err := ComputeAvailability(context.Background(), settings, nil, nil, noCounts, now)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}
	if res.ExcludedReasons["2024-06-03"] != ReasonCutoff {
		t.Errorf("LA shop should still be on June 3 and past cutoff, got %v", res.ExcludedReasons)
	}
	if res.NextValidDate != "2024-06-04" {
		t.Errorf("nextValidDate = %q, want 2024-06-04", res.NextValidDate)
	}
}

func TestComputeAvailability_PartitionInvariant(t *testing.T) {
	settings := baseSettings()
	settings.MaxDaysAhead = 13
	settings.DailyCapacity = 1
	blackouts := []model.BlackoutEntry{
		{Date: "2024-06-05"},
		{Date: "06-10", Recurring: true},
	}
	counts := countsFromMap(map[string]int{"2024-06-06": 5})

	res, err := ComputeAvailability(context.Background(), settings, nil, blackouts, counts, mondayMorning)
	if err != nil {
		t.Fatalf("ComputeAvailability failed: %v", err)
	}

	total := len(res.AvailableDates) + len(res.ExcludedDates)
	if total != settings.MaxDaysAhead+1 {
		t.Errorf("scan covered %d dates, want %d", total, settings.MaxDaysAhead+1)
	}

	seen := map[string]bool{}
	for _, d := range res.AvailableDates {
		seen[d] = true
	}
	for _, d := range res.ExcludedDates {
		if seen[d] {
			t.Errorf("date %s is both available and excluded", d)
		}
		if res.ExcludedReasons[d] == "" {
			t.Errorf("excluded date %s has no reason", d)
		}
	}
	if len(res.AvailableDates) > 0 && res.NextValidDate != res.AvailableDates[0] {
		t.Errorf("nextValidDate = %q, want first available %q", res.NextValidDate, res.AvailableDates[0])
	}
}

func TestComputeAvailability_BadTimezone(t *testing.T) {
	settings := baseSettings()
	settings.Timezone = "Mars/Olympus_Mons"
	if _, err := ComputeAvailability(context.Background(), settings, nil, nil, noCounts, mondayMorning); err == nil {
		t.Error("unknown timezone should fail")
	}
}
