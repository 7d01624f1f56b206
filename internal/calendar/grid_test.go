package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildGridShape(t *testing.T) {
	for year := 1999; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			grid := BuildGrid(year, month)
			require.Len(t, grid, GridCells)
			require.Equal(t, time.Sunday, grid[0].Weekday(), "%d-%02d", year, month)

			inMonth := 0
			for i, d := range grid {
				if i > 0 {
					require.Equal(t, grid[i-1].AddDays(1), d)
					require.Less(t, string(grid[i-1].Key()), string(d.Key()))
				}
				if d.Year == year && d.Month == month {
					inMonth++
				}
			}
			require.Equal(t, DaysIn(year, month), inMonth, "%d-%02d", year, month)
		}
	}
}

func TestBuildGridLeapFebruary(t *testing.T) {
	grid := BuildGrid(2024, time.February)

	// Feb 1st 2024 is a Thursday, so the grid opens on Sunday Jan 28th.
	require.Equal(t, Date{2024, time.January, 28}, grid[0])

	leapDays := 0
	for _, d := range grid {
		if d.Month == time.February && d.Day == 29 {
			leapDays++
		}
	}
	require.Equal(t, 1, leapDays)
	require.Equal(t, 29, DaysIn(2024, time.February))
	require.Equal(t, 28, DaysIn(2023, time.February))
	require.Equal(t, 28, DaysIn(1900, time.February))
	require.Equal(t, 29, DaysIn(2000, time.February))
}

func TestBuildGridYearRollover(t *testing.T) {
	grid := BuildGrid(2023, time.December)
	require.Equal(t, Date{2023, time.November, 26}, grid[0])
	require.Equal(t, Date{2024, time.January, 6}, grid[GridCells-1])
}

func TestBuildGridMonthStartingOnSunday(t *testing.T) {
	// September 2024 begins on a Sunday: no leading days.
	grid := BuildGrid(2024, time.September)
	require.Equal(t, Date{2024, time.September, 1}, grid[0])
}

func TestYearMonthNavigation(t *testing.T) {
	dec := YearMonth{2023, time.December}
	require.Equal(t, YearMonth{2024, time.January}, dec.Next())
	require.Equal(t, YearMonth{2023, time.November}, dec.Prev())
	require.Equal(t, YearMonth{2023, time.December}, YearMonth{2024, time.January}.Prev())
	require.Equal(t, -1, dec.Compare(dec.Next()))
	require.Equal(t, 1, dec.Compare(dec.Prev()))
	require.Equal(t, 0, dec.Compare(dec))
}

func TestYearMonthFormatting(t *testing.T) {
	ym := YearMonth{2024, time.March}
	require.Equal(t, "2024-03", ym.String())
	require.Equal(t, "2024年3月", ym.Label())

	parsed, err := ParseYearMonth("2024-03")
	require.NoError(t, err)
	require.Equal(t, ym, parsed)

	_, err = ParseYearMonth("2024")
	require.Error(t, err)
}
