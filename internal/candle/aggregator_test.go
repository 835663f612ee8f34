package candle

import (
	"testing"
	"time"

	"github.com/Nikhil1914/EMA-BOT/internal/models"
)

func tickAt(t0 time.Time, offsetSec int, price float64) models.Tick {
	return models.Tick{Price: price, At: t0.Add(time.Duration(offsetSec) * time.Second)}
}

func TestIngest_FirstTickOpensCandle(t *testing.T) {
	t0 := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	a := New(1, 100)

	opened := a.Ingest(tickAt(t0, 0, 100.5))
	if !opened {
		t.Fatal("first tick must open a candle")
	}

	candles := a.Candles()
	if len(candles) != 1 {
		t.Fatalf("len=%d, want 1", len(candles))
	}
	c := candles[0]
	if c.Open != 100.5 || c.High != 100.5 || c.Low != 100.5 || c.Close != 100.5 {
		t.Fatalf("seed candle must be O=H=L=C, got %+v", c)
	}
	if !c.OpenTime.Equal(t0) {
		t.Fatalf("open time %v, want %v", c.OpenTime, t0)
	}
}

func TestIngest_TickWithinWindowUpdatesOpenCandle(t *testing.T) {
	t0 := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	a := New(1, 100)

	a.Ingest(tickAt(t0, 0, 100))
	if opened := a.Ingest(tickAt(t0, 10, 102)); opened {
		t.Fatal("in-window tick must not open a candle")
	}
	if opened := a.Ingest(tickAt(t0, 20, 99)); opened {
		t.Fatal("in-window tick must not open a candle")
	}
	a.Ingest(tickAt(t0, 30, 101))

	candles := a.Candles()
	if len(candles) != 1 {
		t.Fatalf("len=%d, want 1", len(candles))
	}
	c := candles[0]
	if c.Open != 100 {
		t.Errorf("open mutated to %v", c.Open)
	}
	if c.High != 102 {
		t.Errorf("high=%v, want 102", c.High)
	}
	if c.Low != 99 {
		t.Errorf("low=%v, want 99", c.Low)
	}
	if c.Close != 101 {
		t.Errorf("close=%v, want 101", c.Close)
	}
}

func TestIngest_TickPastWindowOpensExactlyOneCandle(t *testing.T) {
	t0 := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	a := New(1, 100)

	a.Ingest(tickAt(t0, 0, 100))
	a.Ingest(tickAt(t0, 30, 101))

	// well past the window; still exactly one new candle
	if opened := a.Ingest(tickAt(t0, 150, 103)); !opened {
		t.Fatal("past-window tick must open a candle")
	}

	candles := a.Candles()
	if len(candles) != 2 {
		t.Fatalf("len=%d, want 2", len(candles))
	}
	if candles[0].Close != 101 {
		t.Errorf("closed candle close=%v, want 101", candles[0].Close)
	}
	last := candles[1]
	if last.Open != 103 || last.Close != 103 {
		t.Errorf("new candle must be seeded at tick price, got %+v", last)
	}
}

func TestIngest_RetentionDropsOldest(t *testing.T) {
	t0 := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	a := New(1, 3)

	for i := 0; i < 10; i++ {
		a.Ingest(tickAt(t0, i*60, float64(100+i)))
	}

	if a.Len() != 3 {
		t.Fatalf("len=%d, want 3", a.Len())
	}
	candles := a.Candles()
	if candles[0].Open != 107 {
		t.Errorf("oldest retained open=%v, want 107", candles[0].Open)
	}
	if candles[2].Open != 109 {
		t.Errorf("newest open=%v, want 109", candles[2].Open)
	}
}

func TestClosed_ExcludesOpenCandle(t *testing.T) {
	t0 := time.Date(2025, 1, 6, 10, 0, 0, 0, time.Local)
	a := New(1, 100)

	if got := a.Closed(); len(got) != 0 {
		t.Fatalf("empty aggregator Closed()=%d, want 0", len(got))
	}

	a.Ingest(tickAt(t0, 0, 100))
	a.Ingest(tickAt(t0, 60, 101))
	a.Ingest(tickAt(t0, 120, 102))

	closed := a.Closed()
	if len(closed) != 2 {
		t.Fatalf("closed=%d, want 2", len(closed))
	}
	if closed[1].Close != 101 {
		t.Errorf("last closed close=%v, want 101", closed[1].Close)
	}
}
