package monitor

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lyft/gomonitor/internal/zapline"
)

//go:generate mockgen -destination=mock/logger.go -package=mock github.com/lyft/gomonitor Logger

// Logger is used to report contract violations, such as a Split stopped
// twice, that cannot be returned as errors.
//
// For convenience this interface conforms BOTH to logrus.Logger as well as
// the Zap's Sugared logger.
type Logger interface {
	Errorf(msg string, args ...interface{})
	Warnf(msg string, args ...interface{})
}

// jsonLogger writes one JSON object per line. The format is as if you used a
// zap.NewProduction-generated logger, it exists so that the package does not
// depend on a logging library.
type jsonLogger struct {
	mu     sync.Mutex
	writer io.Writer
	now    func() time.Time
}

// NewJSONLogger returns a Logger writing zap-like JSON lines to w.
func NewJSONLogger(w io.Writer) Logger {
	return &jsonLogger{writer: w, now: time.Now}
}

func (l *jsonLogger) logMessage(level string, msg string) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	zapline.Encode(l.writer, now, level, "gomonitor", msg, nil)
}

func (l *jsonLogger) Errorf(msg string, args ...interface{}) {
	l.logMessage("error", fmt.Sprintf(msg, args...))
}

func (l *jsonLogger) Warnf(msg string, args ...interface{}) {
	l.logMessage("warn", fmt.Sprintf(msg, args...))
}

type nopLogger struct{}

// NewNopLogger returns a Logger that drops everything.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Errorf(string, ...interface{}) {}

func (nopLogger) Warnf(string, ...interface{}) {}
