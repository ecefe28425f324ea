// internal/logging/logging.go
package logging

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Init with logrus defaults.
var Log = NewLogger("info")

// Init replaces the global logger with one at the given level.
func Init(level string) {
	Log = NewLogger(level)
}

// NewLogger creates a JSON logger writing to stdout.
func NewLogger(level string) *logrus.Logger {
	var log = logrus.New()

	// Using JSON format for structured logging.
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(ParseLevel(level))
	return log
}

// ParseLevel maps a config string onto a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

type requestIDKey struct{}

// WithRequestID stores the request correlation id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
