// Package logging puts a go-logger logger behind flow.Logger.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-wizard/flow"
)

// Logger adapts a glog.Logger to flow.Logger and flow.FieldsLogger.
type Logger struct {
	logger glog.Logger
}

var (
	_ flow.Logger       = Logger{}
	_ flow.FieldsLogger = Logger{}
)

// Adapt wraps l. A nil l falls back to a flow.TextLogger on stdout.
func Adapt(l glog.Logger) flow.Logger {
	if l == nil {
		return flow.NewTextLogger(nil, flow.LevelInfo)
	}
	return Logger{logger: l}
}

// New builds a glog logger writing to w (stdout when nil) at level. JSON
// selects structured output.
func New(w io.Writer, level string, json bool) flow.Logger {
	if w == nil {
		w = os.Stdout
	}
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	if json {
		return Adapt(glog.NewLogger(glog.WithWriter(w), glog.WithLevel(level), glog.WithLoggerTypeJSON()))
	}
	return Adapt(glog.NewLogger(glog.WithWriter(w), glog.WithLevel(level)))
}

func (l Logger) Trace(msg string, args ...any) { l.logger.Trace(msg, args...) }
func (l Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l Logger) Fatal(msg string, args ...any) { l.logger.Fatal(msg, args...) }

func (l Logger) WithContext(ctx context.Context) flow.Logger {
	return Logger{logger: l.logger.WithContext(ctx)}
}

// WithFields returns l unchanged when the underlying logger has no field
// support.
func (l Logger) WithFields(fields map[string]any) flow.Logger {
	if fl, ok := l.logger.(glog.FieldsLogger); ok {
		return Logger{logger: fl.WithFields(fields)}
	}
	return l
}
