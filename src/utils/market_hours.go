package utils

import (
	"time"

	"imbalance-screener/src/logger"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------

// nseMIC is the ISO 10383 code for the National Stock Exchange of India.
const nseMIC = "xnse"

// -----------------------------------------------------------------------------

// MarketHours gates scanning on NSE trading hours using scmhub/calendar,
// with a simple Mon-Fri 09:15-15:30 IST fallback when the calendar or the
// timezone database is unavailable.
type MarketHours struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewMarketHours(log *logger.Logger) *MarketHours {
	cal := calendar.GetCalendar(nseMIC)
	if cal == nil {
		log.Warning("Calendar for MIC '%s' unavailable, using Mon-Fri 09:15-15:30 IST fallback", nseMIC)
		loc, err := time.LoadLocation("Asia/Kolkata")
		if err != nil {
			// IST has no DST; a fixed offset is equivalent.
			loc = time.FixedZone("IST", 5*3600+1800)
		}
		return &MarketHours{Fallback: true, Timezone: loc, Logger: log}
	}

	return &MarketHours{Calendar: cal, Timezone: cal.Loc, Logger: log}
}

// -----------------------------------------------------------------------------

// IsOpen reports whether the exchange is open at t.
func (m *MarketHours) IsOpen(t time.Time) bool {
	if m.Timezone != nil {
		t = t.In(m.Timezone)
	}

	if m.Fallback {
		if !m.isTradingDay(t) {
			return false
		}

		hour, minute := t.Hour(), t.Minute()

		// 09:15 - 15:30 IST
		afterOpen := hour > 9 || (hour == 9 && minute >= 15)
		beforeClose := hour < 15 || (hour == 15 && minute < 30)
		return afterOpen && beforeClose
	}

	return m.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

func (m *MarketHours) isTradingDay(t time.Time) bool {
	if m.Fallback {
		weekday := t.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return m.Calendar.IsBusinessDay(t)
}
