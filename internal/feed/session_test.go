package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Nikhil1914/EMA-BOT/internal/logger"
)

var upgrader = websocket.Upgrader{}

func testLog() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestSession_SubscribesAndDeliversTicks(t *testing.T) {
	subCh := make(chan subscribeMessage, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub subscribeMessage
		if err := json.Unmarshal(data, &sub); err != nil {
			t.Errorf("bad subscribe message %q: %v", data, err)
			return
		}
		subCh <- sub

		frames := []string{
			`{"ltp":101.5}`,
			`not json`,
			`{"symbol":"NFO:NIFTY25JANFUT"}`,
			`{"ltp":102.25}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// hold the connection open until the client hangs up
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ticks := make(chan float64, 8)
	sess := New(wsURL(srv), "NFO:NIFTY25JANFUT", 10*time.Millisecond, testLog(), func(price float64, at time.Time) {
		ticks <- price
	})
	go sess.Run()
	defer func() {
		sess.Close()
		waitClosed(t, sess.Done(), "session shutdown")
	}()

	select {
	case sub := <-subCh:
		if sub.Symbol != "NFO:NIFTY25JANFUT" || sub.DataType != "symbolUpdate" {
			t.Errorf("subscribe message = %+v", sub)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no subscribe message received")
	}

	want := []float64{101.5, 102.25}
	for i, w := range want {
		select {
		case got := <-ticks:
			if got != w {
				t.Errorf("tick %d = %v, want %v", i, got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for tick %d", i)
		}
	}
	select {
	case got := <-ticks:
		t.Errorf("unexpected extra tick %v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSession_ReconnectsAfterDrop(t *testing.T) {
	var conns int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		n := atomic.AddInt32(&conns, 1)
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}

		if n == 1 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"ltp":100}`))
			return // drop the first connection
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"ltp":200}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ticks := make(chan float64, 8)
	sess := New(wsURL(srv), "NFO:NIFTY25JANFUT", 10*time.Millisecond, testLog(), func(price float64, at time.Time) {
		ticks <- price
	})
	go sess.Run()
	defer func() {
		sess.Close()
		waitClosed(t, sess.Done(), "session shutdown")
	}()

	for _, w := range []float64{100, 200} {
		select {
		case got := <-ticks:
			if got != w {
				t.Errorf("tick = %v, want %v", got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for tick %v", w)
		}
	}
	if n := atomic.LoadInt32(&conns); n < 2 {
		t.Errorf("connection count = %d, want at least 2", n)
	}
}

func TestSession_CloseRacingConnectDoesNotHang(t *testing.T) {
	// server stays healthy and silent, so a session that commits to its read
	// loop after a missed Close would block in it forever
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	for i := 0; i < 30; i++ {
		sess := New(wsURL(srv), "NFO:NIFTY25JANFUT", 10*time.Millisecond, testLog(), func(price float64, at time.Time) {})
		go sess.Run()
		time.Sleep(time.Duration(i%4) * time.Millisecond)
		sess.Close()
		waitClosed(t, sess.Done(), "session shutdown")
	}
}

func TestSession_CloseStopsDialRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := wsURL(srv)
	srv.Close() // every dial now fails

	sess := New(url, "NFO:NIFTY25JANFUT", time.Minute, testLog(), func(price float64, at time.Time) {
		t.Error("handler should never run")
	})
	go sess.Run()

	time.Sleep(50 * time.Millisecond)
	sess.Close()
	waitClosed(t, sess.Done(), "session shutdown")
}
