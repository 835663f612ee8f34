package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Nikhil1914/EMA-BOT/internal/logger"
)

// Handler receives each decoded last-traded-price update. It runs synchronously
// on the session's receive goroutine, so a slow handler stalls the next tick.
type Handler func(price float64, at time.Time)

// Session owns one live market-data subscription. It dials the feed, sends the
// subscribe message for its instrument, and feeds decoded ticks to the handler.
// On connection loss it waits a fixed delay and re-dials until closed.
type Session struct {
	url     string
	symbol  string
	delay   time.Duration
	log     *logger.Logger
	handler Handler

	mu       sync.Mutex
	conn     *websocket.Conn
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type subscribeMessage struct {
	Symbol   string `json:"symbol"`
	DataType string `json:"dataType"`
}

type tickMessage struct {
	LTP *float64 `json:"ltp"`
}

func New(url, symbol string, delay time.Duration, log *logger.Logger, handler Handler) *Session {
	return &Session{
		url:     url,
		symbol:  symbol,
		delay:   delay,
		log:     log,
		handler: handler,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *Session) logEntry() *logrus.Entry {
	return s.log.WithComponent("feed").WithField("symbol", s.symbol)
}

// Run drives the connect/read/reconnect loop until Close is called. It blocks;
// callers run it on its own goroutine.
func (s *Session) Run() {
	defer close(s.done)

	for {
		if s.stopped() {
			return
		}

		conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
		if err != nil {
			s.logEntry().WithError(err).Warn("feed dial failed")
			if !s.waitRetry() {
				return
			}
			continue
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		// Close may have run between the dial and the store, in which case it
		// found no conn to tear down. Re-check before committing to the read
		// loop so shutdown cannot strand a healthy connection.
		if s.stopped() {
			_ = conn.Close()
			return
		}

		sub := subscribeMessage{Symbol: s.symbol, DataType: "symbolUpdate"}
		if err := conn.WriteJSON(sub); err != nil {
			s.logEntry().WithError(err).Warn("feed subscribe failed")
			_ = conn.Close()
			if !s.waitRetry() {
				return
			}
			continue
		}

		s.logEntry().Info("feed connected and subscribed")
		s.readLoop(conn)

		if s.stopped() {
			s.logEntry().Info("feed closed")
			return
		}
		s.logEntry().Warn("feed connection lost, reconnecting")
		if !s.waitRetry() {
			return
		}
	}
}

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			return
		}

		var msg tickMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.LTP == nil {
			continue
		}

		s.handler(*msg.LTP, time.Now())
	}
}

// waitRetry sleeps the fixed reconnect delay; it returns false when the session
// is closed during the wait.
func (s *Session) waitRetry() bool {
	select {
	case <-s.stopCh:
		return false
	case <-time.After(s.delay):
		return true
	}
}

func (s *Session) stopped() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// Close stops the session cooperatively: the reconnect loop exits on its next
// check and the live connection, if any, is torn down.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.mu.Unlock()
	})
}

// Done is closed when the run loop has fully exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
