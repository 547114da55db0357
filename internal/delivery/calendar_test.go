package delivery

import (
	"testing"
	"time"
)

func TestAddCalendarDays_AcrossDSTSpring(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 2024-03-10 is the spring-forward day in New York.
	got, err := AddCalendarDays("2024-03-09", 1, loc)
	if err != nil {
		t.Fatalf("AddCalendarDays failed: %v", err)
	}
	if got != "2024-03-10" {
		t.Fatalf("expected 2024-03-10, got %s", got)
	}

	got, err = AddCalendarDays("2024-03-09", 2, loc)
	if err != nil {
		t.Fatalf("AddCalendarDays failed: %v", err)
	}
	if got != "2024-03-11" {
		t.Fatalf("expected 2024-03-11, got %s", got)
	}
}

func TestAddCalendarDays_AcrossDSTFall(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 2024-11-03 is the fall-back day: 25 hours long.
	got, err := AddCalendarDays("2024-11-02", 1, loc)
	if err != nil {
		t.Fatalf("AddCalendarDays failed: %v", err)
	}
	if got != "2024-11-03" {
		t.Fatalf("expected 2024-11-03, got %s", got)
	}

	got, err = AddCalendarDays("2024-11-03", 1, loc)
	if err != nil {
		t.Fatalf("AddCalendarDays failed: %v", err)
	}
	if got != "2024-11-04" {
		t.Fatalf("expected 2024-11-04, got %s", got)
	}
}

func TestAddCalendarDays_MonthAndYearBoundaries(t *testing.T) {
	tests := []struct {
		date string
		n    int
		want string
	}{
		{"2024-01-31", 1, "2024-02-01"},
		{"2024-12-31", 1, "2025-01-01"},
		{"2024-02-28", 1, "2024-02-29"}, // leap year
		{"2023-02-28", 1, "2023-03-01"},
		{"2024-06-15", 0, "2024-06-15"},
	}
	for _, tc := range tests {
		got, err := AddCalendarDays(tc.date, tc.n, time.UTC)
		if err != nil {
			t.Fatalf("AddCalendarDays(%s, %d) failed: %v", tc.date, tc.n, err)
		}
		if got != tc.want {
			t.Errorf("AddCalendarDays(%s, %d) = %s, want %s", tc.date, tc.n, got, tc.want)
		}
	}
}

func TestLocalDate_DependsOnZone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 02:00 UTC on June 4 is still June 3 in Los Angeles.
	instant := time.Date(2024, 6, 4, 2, 0, 0, 0, time.UTC)
	if got := LocalDate(instant, time.UTC); got != "2024-06-04" {
		t.Errorf("UTC local date = %s, want 2024-06-04", got)
	}
	if got := LocalDate(instant, la); got != "2024-06-03" {
		t.Errorf("LA local date = %s, want 2024-06-03", got)
	}
}

func TestMinutesSinceMidnight(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	instant := time.Date(2024, 6, 4, 21, 30, 0, 0, time.UTC) // 14:30 in LA (UTC-7)
	if got := MinutesSinceMidnight(instant, time.UTC); got != 21*60+30 {
		t.Errorf("UTC minutes = %d, want %d", got, 21*60+30)
	}
	if got := MinutesSinceMidnight(instant, la); got != 14*60+30 {
		t.Errorf("LA minutes = %d, want %d", got, 14*60+30)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2024-06-03", "2024-06-03", 0},
		{"2024-06-03", "2024-06-08", 5},
		{"2024-06-08", "2024-06-03", -5},
		{"2024-02-28", "2024-03-01", 2}, // leap year
		{"2024-12-30", "2025-01-02", 3},
	}
	for _, tc := range tests {
		got, err := DaysBetween(tc.from, tc.to)
		if err != nil {
			t.Fatalf("DaysBetween(%s, %s) failed: %v", tc.from, tc.to, err)
		}
		if got != tc.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2024-06-03", false}, // Monday
		{"2024-06-07", false}, // Friday
		{"2024-06-08", true},  // Saturday
		{"2024-06-09", true},  // Sunday
	}
	for _, tc := range tests {
		got, err := IsWeekend(tc.date)
		if err != nil {
			t.Fatalf("IsWeekend(%s) failed: %v", tc.date, err)
		}
		if got != tc.want {
			t.Errorf("IsWeekend(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestParseDate_Strict(t *testing.T) {
	for _, bad := range []string{"", "2024-6-3", "06/03/2024", "2024-06-32", "not-a-date"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
	if _, err := ParseDate("2024-06-03"); err != nil {
		t.Errorf("ParseDate should accept 2024-06-03: %v", err)
	}
}
