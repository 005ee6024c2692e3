package storage

import (
	"fmt"
	"time"

	"market-breadth/src/helpers"
	"market-breadth/src/models"
)

// -----------------------------------------------------------------------------

// dayKey formats t as a market-local YYYY-MM-DD key.
func dayKey(t time.Time) string {
	return t.In(models.MarketLocation).Format(models.DateLayout)
}

// -----------------------------------------------------------------------------

func startOfDay(t time.Time) time.Time {
	l := t.In(models.MarketLocation)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, models.MarketLocation)
}

// -----------------------------------------------------------------------------

// TodayRange covers the market-local day containing now.
func TodayRange(now time.Time) (time.Time, time.Time) {
	d := startOfDay(now)
	return d, d
}

// -----------------------------------------------------------------------------

// WeekRange covers Monday of now's week through now's day.
func WeekRange(now time.Time) (time.Time, time.Time) {
	d := startOfDay(now)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset), d
}

// -----------------------------------------------------------------------------

// MonthRange covers the 1st of now's month through now's day.
func MonthRange(now time.Time) (time.Time, time.Time) {
	d := startOfDay(now)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, models.MarketLocation), d
}

// -----------------------------------------------------------------------------

// DayRange parses a YYYY-MM-DD date into a one-day range.
func DayRange(date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(models.DateLayout, date, models.MarketLocation)
	if err != nil {
		return time.Time{}, time.Time{}, helpers.NewValidationError(fmt.Sprintf("invalid date %q", date), err)
	}
	return d, d, nil
}

// -----------------------------------------------------------------------------

// ParseDateRange parses inclusive YYYY-MM-DD bounds.
func ParseDateRange(from, to string) (time.Time, time.Time, error) {
	start, _, err := DayRange(from)
	if err != nil {
		return start, start, err
	}
	end, _, err := DayRange(to)
	if err != nil {
		return start, end, err
	}
	if end.Before(start) {
		return start, end, helpers.NewValidationError(fmt.Sprintf("range end %s before start %s", to, from), nil)
	}
	return start, end, nil
}

// -----------------------------------------------------------------------------

// ResolveView maps a named view (today, week, month, day, range) to dates.
func ResolveView(view, date, from, to string, now time.Time) (time.Time, time.Time, error) {
	switch view {
	case "", "today":
		s, e := TodayRange(now)
		return s, e, nil
	case "week":
		s, e := WeekRange(now)
		return s, e, nil
	case "month":
		s, e := MonthRange(now)
		return s, e, nil
	case "day":
		return DayRange(date)
	case "range":
		return ParseDateRange(from, to)
	}
	return time.Time{}, time.Time{}, helpers.NewValidationError(fmt.Sprintf("unknown view %q", view), nil)
}
