package badge

import (
	"fmt"
	"time"
)

// FormatAge renders the elapsed time between birthday and now as
// "N years, N months, N days", appending a cake emoji on the
// anniversary itself.
func FormatAge(birthday, now time.Time) string {
	years, months, days := dateDiff(birthday, now)

	emoji := ""
	if months == 0 && days == 0 {
		emoji = " 🎂"
	}

	return fmt.Sprintf("%d %s, %d %s, %d %s%s",
		years, plural("year", years),
		months, plural("month", months),
		days, plural("day", days),
		emoji,
	)
}

func plural(unit string, count int) string {
	if count != 1 {
		return unit + "s"
	}
	return unit
}

// dateDiff computes the calendar difference between two dates: the
// largest whole-month span that fits, then leftover days. A 31st
// anchored in a shorter month clamps to that month's end.
func dateDiff(from, to time.Time) (years, months, days int) {
	totalMonths := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	anchor := addMonths(from, totalMonths)
	if anchor.After(to) {
		totalMonths--
		anchor = addMonths(from, totalMonths)
	}

	days = int(midnight(to).Sub(midnight(anchor)).Hours() / 24)
	return totalMonths / 12, totalMonths % 12, days
}

// addMonths shifts a date by whole months, clamping the day to the
// target month's length instead of letting it spill over.
func addMonths(t time.Time, months int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	lastDay := time.Date(firstOfMonth.Year(), firstOfMonth.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, 0, 0, 0, 0, t.Location())
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
