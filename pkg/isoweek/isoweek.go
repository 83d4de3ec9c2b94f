// Package isoweek converts ISO-8601 week numbers into calendar date ranges.
package isoweek

import (
	"fmt"
	"time"
)

// MaxWeek is the highest week number an ISO year can contain.
const MaxWeek = 53

// WeekRange returns the Monday and Sunday bounding the given ISO week.
// January 4th always falls in week 1, so the Monday of week 1 is found by
// walking back from it; every other week is a whole number of weeks later.
// Years where week 1 starts in the prior December fall out of the same rule.
func WeekRange(year, week int) (start, end time.Time) {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // ISO weekday: Monday=1..Sunday=7
	}
	start = jan4.AddDate(0, 0, -(weekday - 1)).AddDate(0, 0, (week-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// Validate reports whether week is a usable week number for year. The range
// check is the caller's responsibility per WeekRange's contract; this helper
// centralizes it for request validation.
func Validate(year, week int) error {
	if week < 1 || week > MaxWeek {
		return fmt.Errorf("week number %d outside 1..%d", week, MaxWeek)
	}
	if year < 1 {
		return fmt.Errorf("invalid year %d", year)
	}
	if week == MaxWeek {
		start, _ := WeekRange(year, week)
		if isoYear, isoWeek := start.ISOWeek(); isoYear != year || isoWeek != week {
			return fmt.Errorf("year %d has no week %d", year, week)
		}
	}
	return nil
}
