package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateKey is a calendar date encoded as YYYY-MM-DD.
// Keys of four-digit years compare chronologically as plain strings.
type DateKey string

// InvalidDateError reports a date that could not be encoded or decoded.
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

// MakeDateKey encodes a year/month/day triple.
// Only the nominal ranges are checked; callers pass real calendar dates.
func MakeDateKey(year, month, day int) (DateKey, error) {
	input := fmt.Sprintf("%d-%d-%d", year, month, day)
	if year < 0 {
		return "", &InvalidDateError{Input: input, Reason: "negative year"}
	}
	if month < 1 || month > 12 {
		return "", &InvalidDateError{Input: input, Reason: "month out of range"}
	}
	if day < 1 || day > 31 {
		return "", &InvalidDateError{Input: input, Reason: "day out of range"}
	}
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", year, month, day)), nil
}

// ParseDateKey splits s on '-' and returns its year, month and day.
func ParseDateKey(s string) (year, month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, &InvalidDateError{Input: s, Reason: "expected YYYY-MM-DD"}
	}

	var nums [3]int
	for i, p := range parts {
		if !isDigits(p) {
			return 0, 0, 0, &InvalidDateError{Input: s, Reason: "non-numeric component"}
		}
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, &InvalidDateError{Input: s, Reason: "non-numeric component"}
		}
		nums[i] = n
	}

	year, month, day = nums[0], nums[1], nums[2]
	if month < 1 || month > 12 {
		return 0, 0, 0, &InvalidDateError{Input: s, Reason: "month out of range"}
	}
	if day < 1 || day > 31 {
		return 0, 0, 0, &InvalidDateError{Input: s, Reason: "day out of range"}
	}
	return year, month, day, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeDateKey re-encodes s in canonical zero-padded form.
func NormalizeDateKey(s string) (DateKey, error) {
	y, m, d, err := ParseDateKey(s)
	if err != nil {
		return "", err
	}
	return MakeDateKey(y, m, d)
}

func (k DateKey) String() string {
	return string(k)
}

// Date decodes the key. The zero Date is returned for malformed keys.
func (k DateKey) Date() Date {
	y, m, d, err := ParseDateKey(string(k))
	if err != nil {
		return Date{}
	}
	return Date{Year: y, Month: time.Month(m), Day: d}
}

// YearMonth returns the month the key falls in.
func (k DateKey) YearMonth() YearMonth {
	d := k.Date()
	return YearMonth{Year: d.Year, Month: d.Month}
}

// Date is a civil date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf takes the civil date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// noon anchors the date at 12:00 UTC so day arithmetic never crosses a
// date boundary through DST or offset changes.
func (d Date) noon() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// Key encodes the date. Dates produced by this package are always valid.
func (d Date) Key() DateKey {
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day))
}

func (d Date) String() string {
	return d.Key().String()
}

// Valid reports whether the day exists in its month, e.g. false for Feb 30.
func (d Date) Valid() bool {
	return d.Month >= time.January && d.Month <= time.December &&
		d.Day >= 1 && d.Day <= DaysIn(d.Year, d.Month)
}

// Weekday returns the day of the week, Sunday == 0.
func (d Date) Weekday() time.Weekday {
	return d.noon().Weekday()
}

// AddDays returns the date n days later, carrying into months and years.
func (d Date) AddDays(n int) Date {
	return DateOf(d.noon().AddDate(0, 0, n))
}

// Time returns midnight of the date in UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Label formats the date for display, e.g. "2024年3月5日 (火)".
func (d Date) Label() string {
	return fmt.Sprintf("%d年%d月%d日 (%s)", d.Year, int(d.Month), d.Day, WeekdayLabels[d.Weekday()])
}

// WeekdayLabels holds the Sunday-first column headers.
var WeekdayLabels = [7]string{"日", "月", "火", "水", "木", "金", "土"}
