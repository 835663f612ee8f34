package engine

import (
	"fmt"
	"time"
)

// eventLog is a bounded append-only buffer of timestamped operator-facing
// events. Once full, the oldest entries are dropped.
type eventLog struct {
	max     int
	entries []string
}

func newEventLog(max int) *eventLog {
	if max <= 0 {
		max = 1
	}
	return &eventLog{max: max}
}

func (b *eventLog) append(at time.Time, msg string) {
	b.entries = append(b.entries, fmt.Sprintf("%s | %s", at.Format("2006-01-02 15:04:05"), msg))
	if len(b.entries) > b.max {
		b.entries = b.entries[len(b.entries)-b.max:]
	}
}

// tail returns a copy of the most recent n entries.
func (b *eventLog) tail(n int) []string {
	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]string, n)
	copy(out, b.entries[len(b.entries)-n:])
	return out
}
