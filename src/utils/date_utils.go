package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODateFormat is the canonical date format used throughout the engine.
const ISODateFormat = "2006-01-02"

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
	dashDatePattern  = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
)

// ParseFlexibleDate parses the date formats seen in broker exports:
//
//   - ISO: "2024-05-01"
//   - Slash: "5/1/2024" or "01/05/2024". Slash dates are ambiguous between
//     US (month first) and UK (day first) ordering. If either of the first
//     two components is greater than 12 it is unambiguously the day;
//     otherwise the US month-first reading is assumed. One heuristic is
//     applied to all rows, never guessed per broker.
//   - Dash: "01-05-2024", read as DD-MM-YYYY.
//
// The result is normalized to midnight UTC; matching rules compare
// calendar dates, never times.
func ParseFlexibleDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	switch {
	case isoDatePattern.MatchString(s):
		return time.Parse(ISODateFormat, s)

	case slashDatePattern.MatchString(s):
		parts := strings.Split(s, "/")
		a, _ := strconv.Atoi(parts[0])
		b, _ := strconv.Atoi(parts[1])
		year, _ := strconv.Atoi(parts[2])
		if year < 100 {
			year += 2000
		}

		month, day := a, b
		if a > 12 {
			// First component cannot be a month, so this is day-first.
			day, month = a, b
		}
		// If b > 12 the default month-first reading already treats b as
		// the day, so nothing to swap.
		return buildDate(year, month, day, s)

	case dashDatePattern.MatchString(s):
		parts := strings.Split(s, "-")
		day, _ := strconv.Atoi(parts[0])
		month, _ := strconv.Atoi(parts[1])
		year, _ := strconv.Atoi(parts[2])
		return buildDate(year, month, day, s)
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}

func buildDate(year, month, day int, original string) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid calendar date: %q", original)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 31 February becomes 2 March);
	// reject those rather than silently shifting the date.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("invalid calendar date: %q", original)
	}
	return t, nil
}

// SameCalendarDay reports whether two instants fall on the same calendar
// date in UTC.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
