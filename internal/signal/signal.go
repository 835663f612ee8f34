package signal

import (
	"math"

	"github.com/Nikhil1914/EMA-BOT/internal/models"
)

// Latest computes the crossover signal over a candle sequence. It is a pure
// function of the closes and the MA config.
//
// A long signal requires the fast average to be above the slow average on the
// last candle and at or below it on the previous candle (a strict cross, not
// just relative ordering); short mirrors. Anything else, including fewer than
// slowPeriod+2 candles, yields none.
func Latest(candles []models.Candle, kind models.MAKind, fastPeriod, slowPeriod int) models.Signal {
	if fastPeriod <= 0 || slowPeriod <= 0 {
		return models.SignalNone
	}
	if len(candles) < slowPeriod+2 {
		return models.SignalNone
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	fast := movingAverage(closes, kind, fastPeriod)
	slow := movingAverage(closes, kind, slowPeriod)

	n := len(closes)
	fastLast, slowLast := fast[n-1], slow[n-1]
	fastPrev, slowPrev := fast[n-2], slow[n-2]

	// NaN warmup values fail every comparison, which collapses to none.
	if fastLast > slowLast && fastPrev <= slowPrev {
		return models.SignalLong
	}
	if fastLast < slowLast && fastPrev >= slowPrev {
		return models.SignalShort
	}
	return models.SignalNone
}

// movingAverage returns the SMA or EMA series over values. SMA entries are NaN
// until a full trailing window exists. EMA is seeded with the first value and
// uses alpha = 2/(period+1) with no bias adjustment.
func movingAverage(values []float64, kind models.MAKind, period int) []float64 {
	if kind == models.MAKindEMA {
		return ema(values, period)
	}
	return sma(values, period)
}

func sma(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	alpha := 2.0 / (float64(period) + 1.0)
	for i, v := range values {
		if i == 0 {
			out[i] = v
			continue
		}
		out[i] = alpha*v + (1-alpha)*out[i-1]
	}
	return out
}
