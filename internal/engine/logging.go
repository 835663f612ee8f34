package engine

import (
	"github.com/sirupsen/logrus"
)

func (e *Engine) logEntry() *logrus.Entry {
	entry := e.log.WithComponent("engine")
	if e.instrument != "" {
		entry = entry.WithField("instrument", e.instrument)
	}
	return entry
}
