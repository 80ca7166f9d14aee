// Package logger provides the structured logger used across the service.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger exposes logging methods for common severity levels.
type Logger interface {
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// New returns a Logger for the given component writing to stdout: JSON
// lines, or a console format when APP_ENV=dev.
func New(component string) Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, component)
}

// NewWithWriter returns a Logger writing JSON lines tagged with component to w.
func NewWithWriter(w io.Writer, component string) Logger {
	return zlog{zerolog.New(w).With().Timestamp().Str("component", component).Logger()}
}

type zlog struct{ z zerolog.Logger }

func (l zlog) Debugw(msg string, fields map[string]any) {
	l.z.Debug().Fields(fields).Msg(msg)
}

func (l zlog) Infof(format string, args ...any)  { l.z.Info().Msgf(format, args...) }
func (l zlog) Warnf(format string, args ...any)  { l.z.Warn().Msgf(format, args...) }
func (l zlog) Errorf(format string, args ...any) { l.z.Error().Msgf(format, args...) }
