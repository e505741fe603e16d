// Package logger configures zerolog for the API and the mock server and
// hands out request-scoped loggers.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

type Config struct {
	Level      Level
	TimeFormat string
	Output     io.Writer
	// Console switches to the human readable writer; JSON otherwise.
	Console bool
}

type Logger struct {
	zl zerolog.Logger
}

// NewLogger builds a logger from cfg; nil means info level to a console on
// stdout.
func NewLogger(cfg *Config) *Logger {
	c := Config{Level: InfoLevel, TimeFormat: time.RFC3339, Output: os.Stdout, Console: true}
	if cfg != nil {
		c = *cfg
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}

	out := c.Output
	if c.Console {
		out = zerolog.ConsoleWriter{Out: c.Output, TimeFormat: c.TimeFormat}
	}

	return &Logger{
		zl: zerolog.New(out).Level(c.Level).With().Timestamp().Caller().Logger(),
	}
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(name string) Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return InfoLevel
	}
	return lvl
}

// SetGlobal installs l as the package-level zerolog logger that middleware
// and services write to.
func (l *Logger) SetGlobal() {
	log.Logger = l.zl
	zerolog.SetGlobalLevel(l.zl.GetLevel())
}

// Zerolog exposes the underlying logger for components that take one directly.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// RequestIDKey is the context key carrying the request id.
type RequestIDKey struct{}

// FromContext returns the global logger, tagged with the request id when
// ctx carries one.
func FromContext(ctx context.Context) *zerolog.Logger {
	l := log.Logger
	if rid, ok := ctx.Value(RequestIDKey{}).(string); ok && rid != "" {
		l = l.With().Str("request_id", rid).Logger()
	}
	return &l
}
