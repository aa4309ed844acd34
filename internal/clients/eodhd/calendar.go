package eodhd

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// Exchange suffix to ISO 10383 MIC
var suffixMIC = map[string]string{
	"US":    "xnys",
	"INDX":  "xnys",
	"LSE":   "xlon",
	"PA":    "xpar",
	"XETRA": "xfra",
	"AS":    "xams",
	"MI":    "xmil",
	"TO":    "xtse",
}

// SessionCalendar decides whether a quote date lags the latest trading session
type SessionCalendar struct {
	calendars map[string]*calendar.Calendar
}

// NewSessionCalendar loads the exchange calendars quotes are checked against
func NewSessionCalendar() *SessionCalendar {
	sc := &SessionCalendar{calendars: make(map[string]*calendar.Calendar)}
	for _, mic := range suffixMIC {
		if _, ok := sc.calendars[mic]; ok {
			continue
		}
		if cal := calendar.GetCalendar(mic); cal != nil {
			sc.calendars[mic] = cal
		}
	}
	return sc
}

func (sc *SessionCalendar) forSymbol(symbol string) *calendar.Calendar {
	mic := "xnys"
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		if m, ok := suffixMIC[strings.ToUpper(symbol[i+1:])]; ok {
			mic = m
		}
	}
	return sc.calendars[mic]
}

// LastSession returns the date of the most recent session that had opened by now,
// in the exchange's timezone. Sessions are assumed to open at 09:30 local time.
func (sc *SessionCalendar) LastSession(symbol string, now time.Time) time.Time {
	cal := sc.forSymbol(symbol)

	loc := time.UTC
	if cal != nil && cal.Loc != nil {
		loc = cal.Loc
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	open := day.Add(9*time.Hour + 30*time.Minute)
	if local.Before(open) {
		day = day.AddDate(0, 0, -1)
	}

	// A fortnight covers any run of weekends and holidays
	for i := 0; i < 14; i++ {
		if isBusinessDay(cal, day) {
			return day
		}
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// IsStale reports whether asOf is older than the latest session for symbol
func (sc *SessionCalendar) IsStale(symbol string, asOf, now time.Time) bool {
	last := sc.LastSession(symbol, now)
	asOfDay := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	return asOfDay.Before(lastDay)
}

func isBusinessDay(cal *calendar.Calendar, day time.Time) bool {
	if cal == nil {
		wd := day.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return cal.IsBusinessDay(day)
}
