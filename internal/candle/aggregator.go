package candle

import (
	"github.com/Nikhil1914/EMA-BOT/internal/models"
)

// Aggregator folds a stream of ticks into fixed-timeframe OHLC candles.
// The last candle is the open one; all earlier candles are closed. The
// retained sequence is bounded: once it would exceed maxCandles the oldest
// entries are dropped.
type Aggregator struct {
	timeframeMin int
	maxCandles   int
	candles      []models.Candle
}

func New(timeframeMin, maxCandles int) *Aggregator {
	if timeframeMin <= 0 {
		timeframeMin = 1
	}
	if maxCandles <= 0 {
		maxCandles = 1
	}
	return &Aggregator{
		timeframeMin: timeframeMin,
		maxCandles:   maxCandles,
	}
}

// Ingest folds one tick into the sequence and reports whether it opened a new
// candle. A tick within the open candle's window only mutates that candle.
func (a *Aggregator) Ingest(tick models.Tick) bool {
	if len(a.candles) == 0 {
		a.candles = append(a.candles, seed(tick))
		return true
	}

	last := &a.candles[len(a.candles)-1]
	elapsedMin := tick.At.Sub(last.OpenTime).Minutes()

	if elapsedMin >= float64(a.timeframeMin) {
		a.candles = append(a.candles, seed(tick))
		if len(a.candles) > a.maxCandles {
			a.candles = a.candles[len(a.candles)-a.maxCandles:]
		}
		return true
	}

	if tick.Price > last.High {
		last.High = tick.Price
	}
	if tick.Price < last.Low {
		last.Low = tick.Price
	}
	last.Close = tick.Price
	return false
}

func seed(tick models.Tick) models.Candle {
	return models.Candle{
		OpenTime: tick.At,
		Open:     tick.Price,
		High:     tick.Price,
		Low:      tick.Price,
		Close:    tick.Price,
	}
}

// Candles returns a copy of the full sequence, open candle included.
func (a *Aggregator) Candles() []models.Candle {
	out := make([]models.Candle, len(a.candles))
	copy(out, a.candles)
	return out
}

// Closed returns a copy of the closed candles, i.e. everything before the
// open last candle.
func (a *Aggregator) Closed() []models.Candle {
	if len(a.candles) == 0 {
		return nil
	}
	out := make([]models.Candle, len(a.candles)-1)
	copy(out, a.candles[:len(a.candles)-1])
	return out
}

func (a *Aggregator) Len() int {
	return len(a.candles)
}
