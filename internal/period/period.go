// Package period implements the ISO-8601 calendar arithmetic the carry-over
// engine partitions time with. Weeks follow ISO numbering (Monday start,
// week 1 = the week containing the year's first Thursday). A week belongs to
// the quarter containing its Thursday, so every ISO week maps to exactly one
// quarter.
package period

import (
	"fmt"
	"time"
)

// Week is a (year, quarter, weekNumber) partition key. Year is the ISO week
// year of the week's Thursday.
type Week struct {
	Year       int `json:"year"`
	Quarter    int `json:"quarter"`
	WeekNumber int `json:"weekNumber"`
}

// YearWeek pairs an ISO week number with its ISO year, for weeks that spill
// across a calendar-year boundary.
type YearWeek struct {
	Year       int `json:"year"`
	WeekNumber int `json:"weekNumber"`
}

// AvailableWeek is a labeled week option for move targets.
type AvailableWeek struct {
	Year       int    `json:"year"`
	Quarter    int    `json:"quarter"`
	WeekNumber int    `json:"weekNumber"`
	Label      string `json:"label"`
}

// QuarterOf returns the quarter (1-4) containing the month.
func QuarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}

func quarterStart(year, quarter int) time.Time {
	return time.Date(year, time.Month(3*(quarter-1)+1), 1, 0, 0, 0, 0, time.UTC)
}

func quarterEnd(year, quarter int) time.Time {
	return quarterStart(year, quarter).AddDate(0, 3, -1)
}

// isoWeekday maps Sunday to 7 so Monday is 1 per ISO-8601.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// thursdayOf returns the Thursday of the ISO week containing t.
func thursdayOf(t time.Time) time.Time {
	return t.AddDate(0, 0, 4-isoWeekday(t))
}

// mondayOfISOWeek returns the Monday starting ISO week (year, week).
func mondayOfISOWeek(year, week int) time.Time {
	// Jan 4 is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday1 := jan4.AddDate(0, 0, 1-isoWeekday(jan4))
	return monday1.AddDate(0, 0, (week-1)*7)
}

// WeeksOf returns the ISO week numbers belonging to the quarter (the weeks
// whose Thursday falls inside it) and the first of those weeks.
func WeeksOf(year, quarter int) (weeks []int, startWeek int) {
	start := quarterStart(year, quarter)
	end := quarterEnd(year, quarter)

	th := thursdayOf(start)
	if th.Before(start) {
		th = th.AddDate(0, 0, 7)
	}
	for !th.After(end) {
		_, wk := th.ISOWeek()
		weeks = append(weeks, wk)
		th = th.AddDate(0, 0, 7)
	}
	if len(weeks) > 0 {
		startWeek = weeks[0]
	}
	return weeks, startWeek
}

// FinalWeeksOf returns the last two ISO weeks of the quarter with their ISO
// years. For a fourth quarter these are the weeks that may spill into the
// next calendar year.
func FinalWeeksOf(year, quarter int) []YearWeek {
	start := quarterStart(year, quarter)
	end := quarterEnd(year, quarter)

	var out []YearWeek
	th := thursdayOf(start)
	if th.Before(start) {
		th = th.AddDate(0, 0, 7)
	}
	for !th.After(end) {
		isoYear, wk := th.ISOWeek()
		out = append(out, YearWeek{Year: isoYear, WeekNumber: wk})
		th = th.AddDate(0, 0, 7)
	}
	if len(out) > 2 {
		out = out[len(out)-2:]
	}
	return out
}

// FirstWeekOf returns the first ISO week of the quarter.
func FirstWeekOf(year, quarter int) YearWeek {
	th := thursdayOf(quarterStart(year, quarter))
	if th.Before(quarterStart(year, quarter)) {
		th = th.AddDate(0, 0, 7)
	}
	isoYear, wk := th.ISOWeek()
	return YearWeek{Year: isoYear, WeekNumber: wk}
}

// QuarterOfWeek returns the quarter an ISO week of a year belongs to.
func QuarterOfWeek(year, week int) int {
	th := thursdayOf(mondayOfISOWeek(year, week))
	return QuarterOf(th.Month())
}

// WeekOf returns the Week containing t.
func WeekOf(t time.Time) Week {
	th := thursdayOf(t)
	isoYear, wk := th.ISOWeek()
	return Week{Year: isoYear, Quarter: QuarterOf(th.Month()), WeekNumber: wk}
}

// Next returns the week after w.
func Next(w Week) Week {
	return WeekOf(mondayOfISOWeek(w.Year, w.WeekNumber).AddDate(0, 0, 7))
}

// Prev returns the week before w.
func Prev(w Week) Week {
	return WeekOf(mondayOfISOWeek(w.Year, w.WeekNumber).AddDate(0, 0, -7))
}

// AvailableWeeks lists move targets around the current week: the previous
// two weeks, the current week, and the next one.
func AvailableWeeks(current Week) []AvailableWeek {
	twoBack := Prev(Prev(current))
	out := make([]AvailableWeek, 0, 4)
	w := twoBack
	for i := 0; i < 4; i++ {
		label := "past"
		switch {
		case w == current:
			label = "current"
		case i == 3:
			label = "next"
		}
		out = append(out, AvailableWeek{
			Year:       w.Year,
			Quarter:    w.Quarter,
			WeekNumber: w.WeekNumber,
			Label:      label,
		})
		w = Next(w)
	}
	return out
}

// ValidateWeek checks the week's fields are in range.
func ValidateWeek(year, quarter, weekNumber int) error {
	if year < 1 {
		return fmt.Errorf("invalid year %d", year)
	}
	if quarter < 1 || quarter > 4 {
		return fmt.Errorf("invalid quarter %d", quarter)
	}
	if weekNumber < 1 || weekNumber > 53 {
		return fmt.Errorf("invalid week number %d", weekNumber)
	}
	return nil
}

// ValidateDay checks an ISO day of week (1=Monday .. 7=Sunday).
func ValidateDay(day int) error {
	if day < 1 || day > 7 {
		return fmt.Errorf("invalid day of week %d", day)
	}
	return nil
}
