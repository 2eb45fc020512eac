package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeNow is swapped out by tests that pin "today".
var timeNow = time.Now

var (
	reOrdinal   = regexp.MustCompile(`(?i)(\d{1,2})(st|nd|rd|th)\b`)
	reISODate   = regexp.MustCompile(`^(\d{4})([-/.])(\d{1,2})([-/.])(\d{1,2})$`)
	reNumericDM = regexp.MustCompile(`^(\d{1,2})([-/.])(\d{1,2})([-/.])(\d{2,4})$`)
	reDayMonth  = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]+)\.?,?\s+(\d{4})$`)
	reMonthDay  = regexp.MustCompile(`(?i)^([a-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"jun": time.June, "jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// validDate checks calendar correctness: month range and day bound by the
// days-in-month table with the leap-year rule.
func validDate(y, m, d int) bool {
	if y < 1 || m < 1 || m > 12 || d < 1 {
		return false
	}
	max := daysInMonth[m]
	if m == 2 && isLeapYear(y) {
		max = 29
	}
	return d <= max
}

func makeDate(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// NormalizeDate converts a free-form date token into a canonical calendar
// date. It never fails: when nothing parses it returns today's date and a
// warning, so the caller logs rather than crashes. Strategies are tried in
// order; the first structural match that also survives calendar validation
// wins, and an out-of-range result falls through to the next pattern.
func NormalizeDate(raw string) (time.Time, []string) {
	var warnings []string

	token := strings.TrimSpace(raw)
	// "1st" -> "1", then drop trailing punctuation OCR tends to append.
	token = reOrdinal.ReplaceAllString(token, "$1")
	token = strings.TrimRight(token, ".,;: ")

	if token == "" {
		today := truncateToDay(timeNow().UTC())
		warnings = append(warnings, "date: empty token, defaulting to today")
		return today, warnings
	}

	// ISO YYYY-MM-DD (also / and . separators).
	if m := reISODate.FindStringSubmatch(token); m != nil && m[2] == m[4] {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[3])
		d, _ := strconv.Atoi(m[5])
		if validDate(y, mo, d) {
			return makeDate(y, mo, d), warnings
		}
	}

	// Numeric A<sep>B<sep>YEAR. Mixed separators ("12-03.2025") are OCR
	// damage, not a date; the separator must repeat.
	if m := reNumericDM.FindStringSubmatch(token); m != nil && m[2] == m[4] {
		a, _ := strconv.Atoi(m[1])
		sep := m[2]
		b, _ := strconv.Atoi(m[3])
		y, _ := strconv.Atoi(m[5])
		if y < 100 {
			y += 2000
		}
		if t, ok := resolveNumericDate(a, b, y, sep); ok {
			return t, warnings
		}
	}

	// "12 March 2025" / "12 Mar 2025".
	if m := reDayMonth.FindStringSubmatch(token); m != nil {
		if mo, ok := monthNames[strings.ToLower(m[2])]; ok {
			d, _ := strconv.Atoi(m[1])
			y, _ := strconv.Atoi(m[3])
			if validDate(y, int(mo), d) {
				return makeDate(y, int(mo), d), warnings
			}
		}
	}

	// "March 12, 2025" / "Mar 12 2025".
	if m := reMonthDay.FindStringSubmatch(token); m != nil {
		if mo, ok := monthNames[strings.ToLower(m[1])]; ok {
			d, _ := strconv.Atoi(m[2])
			y, _ := strconv.Atoi(m[3])
			if validDate(y, int(mo), d) {
				return makeDate(y, int(mo), d), warnings
			}
		}
	}

	today := truncateToDay(timeNow().UTC())
	warnings = append(warnings, fmt.Sprintf("date: could not parse %q, defaulting to today", raw))
	return today, warnings
}

// resolveNumericDate applies the documented ambiguity policy for A<sep>B<sep>Y:
// a dash separator is treated as the US month-first convention (with a
// day-first retry when invalid); everything else defaults to day-first
// unless one component is >12 and forces the reading.
func resolveNumericDate(a, b, y int, sep string) (time.Time, bool) {
	monthFirst := func() (time.Time, bool) {
		if validDate(y, a, b) {
			return makeDate(y, a, b), true
		}
		return time.Time{}, false
	}
	dayFirst := func() (time.Time, bool) {
		if validDate(y, b, a) {
			return makeDate(y, b, a), true
		}
		return time.Time{}, false
	}

	if sep == "-" {
		if t, ok := monthFirst(); ok {
			return t, true
		}
		return dayFirst()
	}

	switch {
	case a > 12:
		return dayFirst()
	case b > 12:
		return monthFirst()
	default:
		// Ambiguous: day-first is the documented default, not a guess.
		return dayFirst()
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
