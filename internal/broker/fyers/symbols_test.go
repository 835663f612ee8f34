package fyers

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.Local)
}

func TestLastThursday(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 30},
		{2025, time.February, 27},
		{2025, time.May, 29},
		{2025, time.December, 25},
	}
	for _, tt := range tests {
		got := lastThursday(tt.year, tt.month)
		if got.Day() != tt.want || got.Month() != tt.month || got.Year() != tt.year {
			t.Errorf("lastThursday(%d, %v) = %v, want day %d", tt.year, tt.month, got, tt.want)
		}
		if got.Weekday() != time.Thursday {
			t.Errorf("lastThursday(%d, %v) = %v, not a Thursday", tt.year, tt.month, got)
		}
	}
}

func TestMapLiveSymbolAt(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		today  time.Time
		want   string
	}{
		{"nifty mid-month", "NIFTY50", day(2025, time.January, 15), "NFO:NIFTY25JANFUT"},
		{"nifty alias", "NIFTY", day(2025, time.January, 15), "NFO:NIFTY25JANFUT"},
		{"lowercase alias", "nifty50", day(2025, time.January, 15), "NFO:NIFTY25JANFUT"},
		{"banknifty", "BANKNIFTY", day(2025, time.January, 15), "NFO:BANKNIFTY25JANFUT"},
		{"banknifty alias", "NIFTYBANK", day(2025, time.January, 15), "NFO:BANKNIFTY25JANFUT"},
		{"expiry day still current month", "NIFTY50", day(2025, time.January, 30), "NFO:NIFTY25JANFUT"},
		{"past expiry rolls to next month", "NIFTY50", day(2025, time.January, 31), "NFO:NIFTY25FEBFUT"},
		{"december rolls into next year", "NIFTY50", day(2025, time.December, 26), "NFO:NIFTY26JANFUT"},
		{"explicit contract passes through", "NFO:NIFTY25JANFUT", day(2025, time.January, 15), "NFO:NIFTY25JANFUT"},
		{"equity passes through", "NSE:SBIN-EQ", day(2025, time.January, 15), "NSE:SBIN-EQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapLiveSymbolAt(tt.symbol, tt.today); got != tt.want {
				t.Errorf("mapLiveSymbolAt(%q, %v) = %q, want %q", tt.symbol, tt.today, got, tt.want)
			}
		})
	}
}
