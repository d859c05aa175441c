package pixlift

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// loggerPtr stores the active logger. Accessed atomically so that SetLogger
// can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[logrus.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for pixlift and all its sub-packages.
// By default pixlift produces no log output. Engines pick up the logger they
// see at creation time.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by pixlift:
//   - [logrus.DebugLevel]: per-stage and per-chunk diagnostics
//   - [logrus.InfoLevel]: strategy selection, totals
//   - [logrus.WarnLevel]: direct-to-chunked fallback after a refused allocation
//
// Example:
//
//	l := logrus.New()
//	l.SetLevel(logrus.DebugLevel)
//	pixlift.SetLogger(l)
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by pixlift.
//
// Logger is safe for concurrent use.
func Logger() *logrus.Logger {
	return loggerPtr.Load()
}
