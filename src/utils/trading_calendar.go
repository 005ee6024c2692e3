package utils

import (
	"log"
	"time"

	"market-breadth/src/models"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers trading-day and trading-hour questions for one
// exchange, using scmhub/calendar when available.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// A-share continuous sessions in exchange local time, as minutes of day.
var aShareSessions = [][2]int{
	{9*60 + 30, 11*60 + 30},
	{13 * 60, 15 * 60},
}

// -----------------------------------------------------------------------------

// MarketMIC maps an exchange prefix to its ISO 10383 MIC. Beijing shares the
// Shanghai holiday schedule.
func MarketMIC(market string) string {
	switch market {
	case "sz":
		return "xshe"
	default:
		return "xshg"
	}
}

// -----------------------------------------------------------------------------

func GetCalendar(market string) *TradingCalendar {
	mic := MarketMIC(market)

	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != "xshg" {
		cal = calendar.GetCalendar("xshg")
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s'. Using simple fallback (Mon-Fri 09:30-11:30, 13:00-15:00 CST).", mic)
		return &TradingCalendar{Fallback: true, Timezone: models.MarketLocation}
	}

	loc := cal.Loc
	if loc == nil {
		loc = models.MarketLocation
	}
	return &TradingCalendar{Calendar: cal, Timezone: loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is trading at t. The lunch break is
// always treated as closed.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}
	if !inSession(t) {
		return false
	}

	if tc.Fallback {
		return tc.IsTradingDay(t)
	}
	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

func inSession(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	for _, s := range aShareSessions {
		if minute >= s[0] && minute < s[1] {
			return true
		}
	}
	return false
}
