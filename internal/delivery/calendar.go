package delivery

import "time"

const DateLayout = "2006-01-02"

// LocalDate formats an instant as a YYYY-MM-DD calendar date in the shop's zone.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// MinutesSinceMidnight returns the local wall-clock minute of day, 0..1439.
func MinutesSinceMidnight(t time.Time, loc *time.Location) int {
	lt := t.In(loc)
	return lt.Hour()*60 + lt.Minute()
}

// ParseDate parses a strict YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// AddCalendarDays advances a calendar date by n local days. Anchoring at local
// noon keeps the arithmetic stable across DST transitions, where midnight can
// be skipped or repeated.
func AddCalendarDays(date string, n int, loc *time.Location) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc)
	return noon.AddDate(0, 0, n).In(loc).Format(DateLayout), nil
}

// IsWeekend reports whether the calendar date falls on Saturday or Sunday.
// A calendar date names the same weekday in every zone.
func IsWeekend(date string) (bool, error) {
	t, err := ParseDate(date)
	if err != nil {
		return false, err
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday, nil
}

// DaysBetween returns to minus from in whole calendar days (negative when to
// precedes from). Both dates are compared as UTC midnights, so the result is
// exact regardless of the shop zone.
func DaysBetween(from, to string) (int, error) {
	a, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	b, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a) / (24 * time.Hour)), nil
}
