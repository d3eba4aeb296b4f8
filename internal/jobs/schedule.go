package jobs

import "time"

// NextRun returns the first run time strictly after now
type NextRun func(now time.Time) time.Time

// DailyAt runs every day at hour:minute in loc
func DailyAt(hour, minute int, loc *time.Location) NextRun {
	return func(now time.Time) time.Time {
		now = now.In(loc)
		at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		if !at.After(now) {
			at = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, loc)
		}
		return at
	}
}

// MonthlyAt runs on the given day of every month at hour:minute in loc.
// day must be between 1 and 28 so it exists in every month.
func MonthlyAt(day, hour, minute int, loc *time.Location) NextRun {
	return func(now time.Time) time.Time {
		now = now.In(loc)
		at := time.Date(now.Year(), now.Month(), day, hour, minute, 0, 0, loc)
		if !at.After(now) {
			at = time.Date(now.Year(), now.Month()+1, day, hour, minute, 0, 0, loc)
		}
		return at
	}
}
