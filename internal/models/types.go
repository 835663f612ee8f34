package models

import "time"

type Side string
type Signal string
type OrderSide string
type MAKind string
type TradeMode string
type TradeSide string
type LevelKind string

const (
	SideFlat  Side = "flat"
	SideLong  Side = "long"
	SideShort Side = "short"

	SignalNone  Signal = "none"
	SignalLong  Signal = "long"
	SignalShort Signal = "short"

	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"

	MAKindSMA MAKind = "SMA"
	MAKindEMA MAKind = "EMA"

	TradeModeIntraday   TradeMode = "Intraday"
	TradeModePositional TradeMode = "Positional"

	TradeSideLongOnly  TradeSide = "long_only"
	TradeSideShortOnly TradeSide = "short_only"
	TradeSideBoth      TradeSide = "both"

	LevelKindPoints  LevelKind = "points"
	LevelKindPercent LevelKind = "percent"
)

// Tick is one real-time price update. Transient, never persisted.
type Tick struct {
	Price float64   `json:"price"`
	At    time.Time `json:"at"`
}

// Candle is an OHLC aggregate over one timeframe window. The last candle of a
// sequence is the only mutable one; all earlier candles are closed.
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
}

// LevelSpec describes how a target or stop level is derived from the entry price.
type LevelSpec struct {
	Kind  LevelKind `json:"kind"`
	Value float64   `json:"value"`
}

// Position is the engine's local belief about the open position. Orders are
// fire-and-forget, so this is not broker-confirmed truth.
type Position struct {
	TradeID     string    `json:"trade_id"`
	Side        Side      `json:"side"`
	EntryPrice  float64   `json:"entry_price"`
	EntryTime   time.Time `json:"entry_time"`
	TargetPrice float64   `json:"target_price"`
	StopPrice   float64   `json:"stop_price"`
}

func (p Position) IsOpen() bool {
	return p.Side == SideLong || p.Side == SideShort
}

// EngineConfig is the strategy snapshot captured at engine start. Operator
// changes take effect only on the next (re)start.
type EngineConfig struct {
	Symbol       string    `json:"symbol"`
	TimeframeMin int       `json:"timeframe_min"`
	MAKind       MAKind    `json:"ma_kind"`
	FastPeriod   int       `json:"fast_period"`
	SlowPeriod   int       `json:"slow_period"`
	TradeMode    TradeMode `json:"trade_mode"`
	TradeSide    TradeSide `json:"trade_side"`
	Target       LevelSpec `json:"target"`
	Stop         LevelSpec `json:"stop"`
	Qty          int       `json:"qty"`
	ProductType  string    `json:"product_type"`
}

// Allows reports whether the configured trade side permits acting on sig.
func (ts TradeSide) Allows(sig Signal) bool {
	switch ts {
	case TradeSideLongOnly:
		return sig != SignalShort
	case TradeSideShortOnly:
		return sig != SignalLong
	default:
		return true
	}
}
