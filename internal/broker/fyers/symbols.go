package fyers

import (
	"fmt"
	"strings"
	"time"
)

var monthCodes = [12]string{
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// MapLiveSymbol translates human-facing index aliases into the nearest-expiry
// futures contract id for the current month, rolling to the next month once
// the last-Thursday expiry has passed. Everything else passes through.
func MapLiveSymbol(symbol string) string {
	return mapLiveSymbolAt(symbol, time.Now())
}

func mapLiveSymbolAt(symbol string, today time.Time) string {
	switch strings.ToUpper(symbol) {
	case "NIFTY50", "NIFTY":
		return currentMonthFutSymbol("NIFTY", "NFO", today)
	case "BANKNIFTY", "NIFTYBANK":
		return currentMonthFutSymbol("BANKNIFTY", "NFO", today)
	default:
		return symbol
	}
}

func currentMonthFutSymbol(root, exchange string, today time.Time) string {
	year, month := today.Year(), today.Month()
	expiry := lastThursday(year, month)

	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	if todayDate.After(expiry) {
		if month == time.December {
			year++
			month = time.January
		} else {
			month++
		}
	}

	yy := year % 100
	return fmt.Sprintf("%s:%s%02d%sFUT", exchange, root, yy, monthCodes[month-1])
}

// lastThursday returns the date of the last Thursday of the given month.
func lastThursday(year int, month time.Month) time.Time {
	// day 0 of the next month is the last day of this one
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local)
	offset := (int(last.Weekday()) - int(time.Thursday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}
