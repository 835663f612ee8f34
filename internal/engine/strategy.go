package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Nikhil1914/EMA-BOT/internal/broker"
	"github.com/Nikhil1914/EMA-BOT/internal/models"
	"github.com/Nikhil1914/EMA-BOT/internal/signal"
)

// evaluate runs the per-tick state machine in fixed priority order: market
// hours gate, intraday square-off, TP/SL exits, then crossover-driven
// transitions. The first exit or entry that fires wins the tick; remaining
// steps are skipped. Callers hold e.mu.
func (e *Engine) evaluate(price float64, at time.Time, barOpened bool) {
	tod := minuteOfDay(at)
	if tod < e.openMin || tod > e.closeMin {
		return
	}

	if e.snap.TradeMode == models.TradeModeIntraday && tod >= e.sqoffMin {
		if e.ledger.IsOpen() {
			e.exitPosition(at, "EOD square-off")
		}
		return
	}

	if e.ledger.IsOpen() {
		pos := e.ledger.Position()
		if pos.Side == models.SideLong {
			if price >= pos.TargetPrice {
				e.exitPosition(at, "Target Hit")
				return
			}
			if price <= pos.StopPrice {
				e.exitPosition(at, "Stop Loss")
				return
			}
		} else {
			if price <= pos.TargetPrice {
				e.exitPosition(at, "Target Hit")
				return
			}
			if price >= pos.StopPrice {
				e.exitPosition(at, "Stop Loss")
				return
			}
		}
	}

	// Signals are evaluated once per closed bar, over the closed prefix, so a
	// crossover cannot fire repeatedly while the same bar is still forming.
	if !barOpened {
		return
	}

	sig := signal.Latest(e.agg.Closed(), e.snap.MAKind, e.snap.FastPeriod, e.snap.SlowPeriod)
	if sig == models.SignalNone {
		return
	}
	if !e.snap.TradeSide.Allows(sig) {
		return
	}

	pos := e.ledger.Position()
	switch {
	case pos.Side == models.SideLong && sig == models.SignalShort:
		e.exitPosition(at, "Signal Flip")
		e.enterPosition(models.SideShort, at)
	case pos.Side == models.SideShort && sig == models.SignalLong:
		e.exitPosition(at, "Signal Flip")
		e.enterPosition(models.SideLong, at)
	case pos.Side == models.SideFlat:
		e.enterPosition(models.Side(sig), at)
	}

	e.lastSignal = sig
}

// enterPosition opens a position at the gateway's last traded price. Entry is
// rejected when no valid price is available. The order call is fire-and-forget:
// an error is logged and the ledger keeps the new position anyway.
func (e *Engine) enterPosition(side models.Side, at time.Time) {
	ctx := context.Background()

	price, err := e.gateway.LastPrice(ctx, e.instrument)
	if err != nil {
		e.logEntry().WithError(err).Warn("entry skipped: last price unavailable")
		e.record(at, fmt.Sprintf("%s entry skipped: last price unavailable", strings.ToUpper(string(side))))
		return
	}

	pos := e.ledger.Enter(side, price, at, e.snap)

	orderSide := models.OrderSideBuy
	if side == models.SideShort {
		orderSide = models.OrderSideSell
	}

	resp, err := e.gateway.PlaceMarketOrder(ctx, e.instrument, orderSide, e.snap.Qty, e.snap.ProductType)
	e.record(at, fmt.Sprintf("%s ENTRY @ %.2f | order: %s", strings.ToUpper(string(side)), price, orderSummary(resp, err)))

	e.log.WithTradeID(pos.TradeID).WithFields(map[string]interface{}{
		"component":  "engine",
		"instrument": e.instrument,
		"side":       side,
		"entry":      pos.EntryPrice,
		"target":     pos.TargetPrice,
		"stop":       pos.StopPrice,
	}).Info("position entered")
}

// exitPosition closes the current position with the given reason. The ledger
// transitions to flat even when the gateway call fails; the position is a
// local belief, not a confirmed fill.
func (e *Engine) exitPosition(at time.Time, reason string) {
	pos := e.ledger.Position()
	if !pos.IsOpen() {
		return
	}

	resp, err := e.gateway.ClosePosition(context.Background(), e.instrument, pos.Side, e.snap.Qty, e.snap.ProductType)
	e.record(at, fmt.Sprintf("EXIT %s | %s | order: %s", strings.ToUpper(string(pos.Side)), reason, orderSummary(resp, err)))

	e.ledger.Clear()
}

func orderSummary(resp broker.OrderResponse, err error) string {
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if resp.Message != "" {
		return fmt.Sprintf("%s (%s)", resp.Status, resp.Message)
	}
	if resp.OrderID != "" {
		return fmt.Sprintf("%s id=%s", resp.Status, resp.OrderID)
	}
	return resp.Status
}
