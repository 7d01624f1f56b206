package calendar

import (
	"fmt"
	"time"
)

const (
	// GridWeeks is the fixed number of week rows in a month grid.
	GridWeeks = 6
	// GridCells is the number of days in a month grid.
	GridCells = GridWeeks * 7
)

// BuildGrid returns the 42 consecutive dates shown for a month,
// starting on the Sunday on or before the first of the month.
func BuildGrid(year int, month time.Month) []Date {
	first := DateOf(time.Date(year, month, 1, 12, 0, 0, 0, time.UTC))
	start := first.AddDays(-int(first.Weekday()))

	grid := make([]Date, GridCells)
	for i := range grid {
		grid[i] = start.AddDays(i)
	}
	return grid
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth reads the "YYYY-MM" form produced by String.
func ParseYearMonth(s string) (YearMonth, error) {
	y, m, _, err := ParseDateKey(s + "-01")
	if err != nil {
		return YearMonth{}, &InvalidDateError{Input: s, Reason: "expected YYYY-MM"}
	}
	return YearMonth{Year: y, Month: time.Month(m)}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Label formats the month for display, e.g. "2024年3月".
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%d年%d月", ym.Year, int(ym.Month))
}

// Next returns the following month, rolling December into January.
func (ym YearMonth) Next() YearMonth {
	return ym.add(1)
}

// Prev returns the preceding month, rolling January into December.
func (ym YearMonth) Prev() YearMonth {
	return ym.add(-1)
}

func (ym YearMonth) add(n int) YearMonth {
	idx := ym.Year*12 + int(ym.Month-1) + n
	y, m := idx/12, idx%12
	if m < 0 {
		y--
		m += 12
	}
	return YearMonth{Year: y, Month: time.Month(m + 1)}
}

// Compare orders months chronologically.
func (ym YearMonth) Compare(other YearMonth) int {
	switch {
	case ym.Year != other.Year:
		if ym.Year < other.Year {
			return -1
		}
		return 1
	case ym.Month < other.Month:
		return -1
	case ym.Month > other.Month:
		return 1
	}
	return 0
}

// First returns the first day of the month.
func (ym YearMonth) First() Date {
	return Date{Year: ym.Year, Month: ym.Month, Day: 1}
}

// Contains reports whether d falls inside the month.
func (ym YearMonth) Contains(d Date) bool {
	return d.Year == ym.Year && d.Month == ym.Month
}
