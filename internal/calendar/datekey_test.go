package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMakeDateKey(t *testing.T) {
	tests := []struct {
		name    string
		y, m, d int
		want    DateKey
		wantErr bool
	}{
		{name: "zero padded", y: 2024, m: 3, d: 5, want: "2024-03-05"},
		{name: "december", y: 2023, m: 12, d: 31, want: "2023-12-31"},
		{name: "month zero", y: 2024, m: 0, d: 1, wantErr: true},
		{name: "month thirteen", y: 2024, m: 13, d: 1, wantErr: true},
		{name: "day zero", y: 2024, m: 1, d: 0, wantErr: true},
		{name: "day 32", y: 2024, m: 1, d: 32, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MakeDateKey(tt.y, tt.m, tt.d)
			if tt.wantErr {
				var dateErr *InvalidDateError
				require.True(t, errors.As(err, &dateErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateKey(t *testing.T) {
	y, m, d, err := ParseDateKey("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, []int{2024, 2, 29}, []int{y, m, d})

	for _, bad := range []string{"", "2024-02", "2024/02/29", "2024-xx-01", "不明", "2024-13-01", "2024-01-00", "+2024-+3-+5", "2024--3-05", "2024- 3-05"} {
		_, _, _, err := ParseDateKey(bad)
		var dateErr *InvalidDateError
		require.Truef(t, errors.As(err, &dateErr), "input %q", bad)
	}
}

func TestDateKeyRoundTrip(t *testing.T) {
	for y := 1999; y <= 2001; y++ {
		for m := 1; m <= 12; m++ {
			for d := 1; d <= DaysIn(y, time.Month(m)); d++ {
				key, err := MakeDateKey(y, m, d)
				require.NoError(t, err)
				gy, gm, gd, err := ParseDateKey(key.String())
				require.NoError(t, err)
				require.Equal(t, []int{y, m, d}, []int{gy, gm, gd})
			}
		}
	}
}

func TestNormalizeDateKey(t *testing.T) {
	key, err := NormalizeDateKey("2024-3-5")
	require.NoError(t, err)
	require.Equal(t, DateKey("2024-03-05"), key)
}

func TestNormalizeGridEdgeKeys(t *testing.T) {
	for _, month := range []YearMonth{{0, time.January}, {9999, time.December}} {
		for _, d := range BuildGrid(month.Year, month.Month) {
			if d.Year < 0 {
				continue
			}
			key, err := NormalizeDateKey(d.Key().String())
			require.NoError(t, err, d.Key())
			require.Equal(t, d.Key(), key)
		}
	}
}

func TestDateValid(t *testing.T) {
	require.True(t, Date{2024, time.February, 29}.Valid())
	require.False(t, Date{2025, time.February, 29}.Valid())
	require.False(t, DateKey("2025-02-30").Date().Valid())
	require.False(t, Date{}.Valid())
}

func TestDateKeyOrderIsChronological(t *testing.T) {
	a, _ := MakeDateKey(2023, 12, 31)
	b, _ := MakeDateKey(2024, 1, 1)
	c, _ := MakeDateKey(2024, 10, 2)
	require.Less(t, string(a), string(b))
	require.Less(t, string(b), string(c))
}

func TestDateKeyIgnoresProcessZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	honolulu := time.FixedZone("HST", -10*60*60)

	// Same civil date expressed in two far apart zones.
	a := DateOf(time.Date(2024, 3, 5, 0, 30, 0, 0, tokyo))
	b := DateOf(time.Date(2024, 3, 5, 23, 30, 0, 0, honolulu))
	require.Equal(t, DateKey("2024-03-05"), a.Key())
	require.Equal(t, a.Key(), b.Key())
}

func TestDateAddDaysCarries(t *testing.T) {
	require.Equal(t, Date{2024, time.January, 1}, Date{2023, time.December, 31}.AddDays(1))
	require.Equal(t, Date{2024, time.February, 29}, Date{2024, time.March, 1}.AddDays(-1))
	require.Equal(t, Date{2023, time.March, 1}, Date{2023, time.February, 28}.AddDays(1))
}

func TestDateLabel(t *testing.T) {
	require.Equal(t, "2024年3月5日 (火)", Date{2024, time.March, 5}.Label())
}
