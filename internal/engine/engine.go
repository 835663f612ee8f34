package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/Nikhil1914/EMA-BOT/internal/broker"
	"github.com/Nikhil1914/EMA-BOT/internal/candle"
	"github.com/Nikhil1914/EMA-BOT/internal/config"
	"github.com/Nikhil1914/EMA-BOT/internal/logger"
	"github.com/Nikhil1914/EMA-BOT/internal/models"
)

const maxLogEvents = 200

// Session is the handle the engine keeps on its market-data subscription.
type Session interface {
	Run()
	Close()
	Done() <-chan struct{}
}

// SessionFactory builds a session for the mapped instrument that delivers
// decoded ticks to the handler.
type SessionFactory func(instrument string, handler func(price float64, at time.Time)) Session

// Engine owns the live trading state: candle sequence, position ledger, last
// signal, and the bounded event log. mu guards the run state against the
// receive goroutine and the control surface. Tick handling runs synchronously on the
// receive goroutine, so a slow gateway call stalls the next tick; acceptable
// at single-symbol sub-second tick rates.
type Engine struct {
	// lifecycle serializes Start and Stop so a racing pair can never leave
	// two sessions alive. mu guards the run state and is never held across
	// a session teardown wait.
	lifecycle sync.Mutex

	mu sync.Mutex

	gateway    broker.Gateway
	newSession SessionFactory
	mapSymbol  func(string) string
	log        *logger.Logger

	openMin    int
	closeMin   int
	sqoffMin   int
	maxCandles int

	running    bool
	session    Session
	snap       models.EngineConfig
	instrument string
	agg        *candle.Aggregator
	ledger     Ledger
	lastSignal models.Signal
	events     *eventLog
}

// Status is the operator-facing snapshot exposed by the control surface.
type Status struct {
	Running    bool            `json:"running"`
	Instrument string          `json:"instrument,omitempty"`
	Position   models.Position `json:"position"`
	LastSignal models.Signal   `json:"last_signal"`
	Candles    int             `json:"candles"`
	Log        []string        `json:"log"`
}

func New(session config.SessionConfig, gateway broker.Gateway, newSession SessionFactory, mapSymbol func(string) string, log *logger.Logger) (*Engine, error) {
	openMin, err := parseClock(session.MarketOpen)
	if err != nil {
		return nil, fmt.Errorf("invalid market_open %q: %w", session.MarketOpen, err)
	}
	closeMin, err := parseClock(session.MarketClose)
	if err != nil {
		return nil, fmt.Errorf("invalid market_close %q: %w", session.MarketClose, err)
	}
	sqoffMin, err := parseClock(session.SquareOff)
	if err != nil {
		return nil, fmt.Errorf("invalid square_off %q: %w", session.SquareOff, err)
	}
	if mapSymbol == nil {
		mapSymbol = func(s string) string { return s }
	}

	e := &Engine{
		gateway:    gateway,
		newSession: newSession,
		mapSymbol:  mapSymbol,
		log:        log,
		openMin:    openMin,
		closeMin:   closeMin,
		sqoffMin:   sqoffMin,
		maxCandles: session.MaxCandles,
		lastSignal: models.SignalNone,
		events:     newEventLog(maxLogEvents),
	}
	e.ledger.Clear()
	return e, nil
}

// Start captures the strategy snapshot, maps the symbol to its live instrument
// and opens the market-data session. Starting while already running tears down
// the prior session first, so there is never more than one subscription.
func (e *Engine) Start(sc models.EngineConfig) error {
	if sc.Symbol == "" {
		return fmt.Errorf("empty symbol")
	}
	if sc.TimeframeMin <= 0 {
		return fmt.Errorf("timeframe must be positive, got %d", sc.TimeframeMin)
	}
	if sc.FastPeriod <= 0 || sc.SlowPeriod <= 1 {
		return fmt.Errorf("invalid MA periods fast=%d slow=%d", sc.FastPeriod, sc.SlowPeriod)
	}
	if sc.FastPeriod >= sc.SlowPeriod {
		return fmt.Errorf("fast period %d must be below slow period %d", sc.FastPeriod, sc.SlowPeriod)
	}

	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	e.stop()

	e.mu.Lock()
	e.snap = sc
	e.instrument = e.mapSymbol(sc.Symbol)
	e.agg = candle.New(sc.TimeframeMin, e.maxCandles)
	e.ledger.Clear()
	e.lastSignal = models.SignalNone
	e.running = true

	sess := e.newSession(e.instrument, e.OnTick)
	e.session = sess
	instrument := e.instrument
	e.record(time.Now(), fmt.Sprintf("starting live engine for %s | TF=%d min", instrument, sc.TimeframeMin))
	e.mu.Unlock()

	go sess.Run()
	return nil
}

// Stop marks the engine stopped and tears down the active session. Calling it
// when already stopped is a no-op.
func (e *Engine) Stop() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	e.stop()
}

// stop is the teardown body. Callers hold e.lifecycle.
func (e *Engine) stop() {
	e.mu.Lock()
	wasRunning := e.running
	e.running = false
	sess := e.session
	e.session = nil
	e.mu.Unlock()

	if sess != nil {
		sess.Close()
		<-sess.Done()
	}

	if wasRunning {
		e.mu.Lock()
		e.record(time.Now(), "stopped live engine")
		e.mu.Unlock()
	}
}

// OnTick folds one price update into the candle sequence and runs the strategy
// evaluation. It is the feed handler and executes on the receive goroutine.
func (e *Engine) OnTick(price float64, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	opened := e.agg.Ingest(models.Tick{Price: price, At: at})
	e.evaluate(price, at, opened)
}

// Status returns a consistent snapshot of the run state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	candles := 0
	if e.agg != nil {
		candles = e.agg.Len()
	}

	return Status{
		Running:    e.running,
		Instrument: e.instrument,
		Position:   e.ledger.Position(),
		LastSignal: e.lastSignal,
		Candles:    candles,
		Log:        e.events.tail(40),
	}
}

// LogTail returns the n most recent event-log lines.
func (e *Engine) LogTail(n int) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events.tail(n)
}

// record appends to the operator event log and mirrors the line to the
// process log. Callers hold e.mu.
func (e *Engine) record(at time.Time, msg string) {
	e.events.append(at, msg)
	e.logEntry().Info(msg)
}

func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func minuteOfDay(at time.Time) int {
	return at.Hour()*60 + at.Minute()
}
