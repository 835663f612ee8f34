package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/Nikhil1914/EMA-BOT/internal/models"
)

// Ledger holds the engine's current position. It is the controller's local
// belief about exposure: entries and exits mutate it even when the downstream
// order call fails. No history is retained across Clear.
type Ledger struct {
	pos models.Position
}

// Enter opens a position at the given price and derives target and stop levels
// from the config. The caller is responsible for having a valid price.
func (l *Ledger) Enter(side models.Side, price float64, at time.Time, cfg models.EngineConfig) models.Position {
	target, stop := calcLevels(price, side, cfg.Target, cfg.Stop)
	l.pos = models.Position{
		TradeID:     uuid.NewString(),
		Side:        side,
		EntryPrice:  price,
		EntryTime:   at,
		TargetPrice: target,
		StopPrice:   stop,
	}
	return l.pos
}

// Clear resets the ledger to flat and nulls all price and time fields.
func (l *Ledger) Clear() {
	l.pos = models.Position{Side: models.SideFlat}
}

func (l *Ledger) Position() models.Position {
	return l.pos
}

func (l *Ledger) IsOpen() bool {
	return l.pos.IsOpen()
}

// calcLevels derives the target and stop prices from the entry. Point specs
// offset the entry by the value, percent specs scale it; short positions
// mirror the signs.
func calcLevels(entry float64, side models.Side, target, stop models.LevelSpec) (float64, float64) {
	dir := 1.0
	if side == models.SideShort {
		dir = -1.0
	}

	var tp float64
	if target.Kind == models.LevelKindPercent {
		tp = entry * (1 + dir*target.Value/100)
	} else {
		tp = entry + dir*target.Value
	}

	var sl float64
	if stop.Kind == models.LevelKindPercent {
		sl = entry * (1 - dir*stop.Value/100)
	} else {
		sl = entry - dir*stop.Value
	}

	return tp, sl
}
