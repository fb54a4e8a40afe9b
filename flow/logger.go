package flow

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logger is the logging contract shared by the wizard runtime.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger extends Logger with structured-field support.
type FieldsLogger interface {
	WithFields(map[string]any) Logger
}

// Level orders log severities, lowest first.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < LevelTrace || l > LevelFatal {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel reads a level name case-insensitively. Unknown names give
// LevelInfo and false.
func ParseLevel(name string) (Level, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == name {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

// TextLogger writes one plain line per entry:
//
//	2026-01-02T15:04:05Z INFO  [submit] upload failed attempt=2 entity_id=42
//
// The component field, when set, is printed in brackets ahead of the message.
// It is the fallback used when no go-logger backend is configured.
type TextLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	min    Level
	now    func() time.Time
	fields map[string]any
}

// NewTextLogger writes entries at min or above to out, stdout when nil.
func NewTextLogger(out io.Writer, min Level) *TextLogger {
	if out == nil {
		out = os.Stdout
	}
	return &TextLogger{mu: &sync.Mutex{}, out: out, min: min, now: time.Now}
}

func (l *TextLogger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *TextLogger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *TextLogger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *TextLogger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *TextLogger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *TextLogger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

// WithContext is a no-op; the text format carries no request scope.
func (l *TextLogger) WithContext(context.Context) Logger { return l }

// WithFields returns a logger sharing l's writer with fields merged in.
func (l *TextLogger) WithFields(fields map[string]any) Logger {
	cp := *l
	cp.fields = make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		cp.fields[k] = v
	}
	for k, v := range fields {
		cp.fields[k] = v
	}
	return &cp
}

// Enabled reports whether entries at level are written.
func (l *TextLogger) Enabled(level Level) bool { return level >= l.min }

func (l *TextLogger) write(level Level, msg string, args []any) {
	if !l.Enabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	b.WriteString(l.now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, " %-5s ", level)
	if c, ok := l.fields["component"]; ok {
		fmt.Fprintf(&b, "[%v] ", c)
	}
	b.WriteString(strings.TrimSpace(msg))

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		if k != "component" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, b.String())
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Trace(string, ...any)                 {}
func (NopLogger) Debug(string, ...any)                 {}
func (NopLogger) Info(string, ...any)                  {}
func (NopLogger) Warn(string, ...any)                  {}
func (NopLogger) Error(string, ...any)                 {}
func (NopLogger) Fatal(string, ...any)                 {}
func (n NopLogger) WithContext(context.Context) Logger { return n }

// NormalizeLogger returns a usable logger for a possibly nil value.
func NormalizeLogger(logger Logger) Logger {
	if logger == nil {
		return NopLogger{}
	}
	return logger
}

// WithLoggerFields attaches fields when the logger supports them.
func WithLoggerFields(logger Logger, fields map[string]any) Logger {
	logger = NormalizeLogger(logger)
	if fl, ok := logger.(FieldsLogger); ok {
		return fl.WithFields(fields)
	}
	return logger
}
