package delivery

import (
	"testing"

	"github.com/r-sadik/deliverywindow/internal/model"
)

func TestIsBlackedOut(t *testing.T) {
	entries := []model.BlackoutEntry{
		{Date: "2024-12-25", Recurring: false, Label: "Christmas 2024"},
		{Date: "2025-01-01", Recurring: true, Label: "New Year"},
		{Date: "07-04", Recurring: true, Label: "Independence Day"},
	}

	tests := []struct {
		date string
		want bool
	}{
		{"2024-12-25", true},  // exact one-off
		{"2025-12-25", false}, // one-off does not recur
		{"2025-01-01", true},  // recurring, same year as stored
		{"2026-01-01", true},  // recurring matches every year
		{"2024-07-04", true},  // recurring stored as MM-DD
		{"2024-07-05", false},
	}
	for _, tc := range tests {
		if got := IsBlackedOut(tc.date, entries); got != tc.want {
			t.Errorf("IsBlackedOut(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestIsBlackedOut_Feb29MatchesLeapYearsOnly(t *testing.T) {
	entries := []model.BlackoutEntry{{Date: "02-29", Recurring: true}}

	if !IsBlackedOut("2024-02-29", entries) {
		t.Error("recurring 02-29 should match a leap-year Feb 29")
	}
	// Non-leap years have no Feb 29 candidate, so the entry is simply inert.
	if IsBlackedOut("2025-02-28", entries) {
		t.Error("recurring 02-29 must not match Feb 28")
	}
	if IsBlackedOut("2025-03-01", entries) {
		t.Error("recurring 02-29 must not match Mar 1")
	}
}

func TestIsBlackedOut_NoEntries(t *testing.T) {
	if IsBlackedOut("2024-06-03", nil) {
		t.Error("no entries should never black out a date")
	}
}
