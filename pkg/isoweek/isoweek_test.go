package isoweek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekRangeKnownDates(t *testing.T) {
	cases := []struct {
		name      string
		year      int
		week      int
		wantStart string
		wantEnd   string
	}{
		// January 4, 2025 is a Saturday, so week 1 starts in December 2024.
		{"2025 week 1 starts prior december", 2025, 1, "2024-12-30", "2025-01-05"},
		{"2025 week 10", 2025, 10, "2025-03-03", "2025-03-09"},
		{"2024 week 1", 2024, 1, "2024-01-01", "2024-01-07"},
		// 2020 is a long ISO year with 53 weeks.
		{"2020 week 53", 2020, 53, "2020-12-28", "2021-01-03"},
		{"2021 week 1 follows 2020 week 53", 2021, 1, "2021-01-04", "2021-01-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := WeekRange(tc.year, tc.week)
			require.Equal(t, tc.wantStart, start.Format("2006-01-02"))
			require.Equal(t, tc.wantEnd, end.Format("2006-01-02"))
		})
	}
}

func TestWeekRangeInvariants(t *testing.T) {
	for year := 2019; year <= 2030; year++ {
		for week := 1; week <= 52; week++ {
			start, end := WeekRange(year, week)
			require.Equal(t, time.Monday, start.Weekday(), "year %d week %d", year, week)
			require.Equal(t, time.Sunday, end.Weekday(), "year %d week %d", year, week)
			require.Equal(t, start.AddDate(0, 0, 6), end)

			nextStart, _ := WeekRange(year, week+1)
			require.Equal(t, nextStart.AddDate(0, 0, -1), end, "weeks %d/%d of %d not adjacent", week, week+1, year)
		}
	}
}

func TestWeekRangeAgreesWithStdlib(t *testing.T) {
	for year := 2020; year <= 2027; year++ {
		for week := 1; week <= 52; week++ {
			start, _ := WeekRange(year, week)
			gotYear, gotWeek := start.ISOWeek()
			require.Equal(t, year, gotYear)
			require.Equal(t, week, gotWeek)
		}
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(2025, 1))
	require.NoError(t, Validate(2025, 52))
	require.NoError(t, Validate(2020, 53)) // long ISO year
	require.Error(t, Validate(2025, 53))   // 2025 has only 52 weeks
	require.Error(t, Validate(2025, 0))
	require.Error(t, Validate(2025, 54))
	require.Error(t, Validate(0, 10))
}
