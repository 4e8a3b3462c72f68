// Package period holds the calendar arithmetic shared by attendance and
// evaluation aggregation. Weeks follow ISO-8601: they start on Monday and
// week 1 is the week containing the first Thursday of the year.
package period

import (
	"time"

	"github.com/snabb/isoweek"
)

const dateLayout = "2006-01-02"

// CivilDate returns the calendar day of t as observed in loc, encoded as
// midnight UTC. This is the representation used for DATE columns.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayBounds returns the [start, end) instants of a civil date in loc.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// StartOfWeek returns the Monday of the civil date's week.
func StartOfWeek(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}

// WeeksInYear returns 52 or 53. December 28th always falls in the last ISO week.
func WeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// ValidWeek reports whether week exists in the ISO year.
func ValidWeek(year, week int) bool {
	return week >= 1 && week <= WeeksInYear(year)
}

// WeekBounds returns the Monday and Sunday civil dates of an ISO week.
func WeekBounds(year, week int) (time.Time, time.Time) {
	start := isoweek.StartTime(year, week, time.UTC)
	return start, start.AddDate(0, 0, 6)
}

// WeekOf returns the ISO year and week of a civil date.
func WeekOf(date time.Time) (int, int) {
	return isoweek.FromDate(date.Year(), date.Month(), date.Day())
}

// MonthOfWeek assigns an ISO week to the month containing its Thursday, so
// every week belongs to exactly one month and one quarter.
func MonthOfWeek(year, week int) (int, time.Month) {
	start, _ := WeekBounds(year, week)
	thursday := start.AddDate(0, 0, 3)
	return thursday.Year(), thursday.Month()
}

// QuarterOf maps a month to 1..4.
func QuarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(dateLayout)
}

// ParseDate parses YYYY-MM-DD into a civil date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// ParseMonth parses YYYY-MM and returns the first and last civil dates of
// the month.
func ParseMonth(s string) (time.Time, time.Time, error) {
	first, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return first, first.AddDate(0, 1, -1), nil
}

// ClockOn places an "HH:MM" wall clock on a civil date in loc.
func ClockOn(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}
