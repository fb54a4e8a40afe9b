package flow

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTextLoggerFormatsComponentAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	base := NewTextLogger(buf, LevelDebug)
	base.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }

	logger := WithLoggerFields(base, map[string]any{"component": "submit", "entity_id": "42", "attempt": 2})
	logger.Warn("upload failed: %s", "storage down")
	logger.Trace("hidden")

	want := "2026-01-02T15:04:05Z WARN  [submit] upload failed: storage down attempt=2 entity_id=42\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected line\n got: %q\nwant: %q", got, want)
	}
}

func TestTextLoggerWithFieldsDoesNotLeak(t *testing.T) {
	buf := &bytes.Buffer{}
	base := NewTextLogger(buf, LevelInfo)
	_ = base.WithFields(map[string]any{"step": "media"})

	base.Info("plain")
	if strings.Contains(buf.String(), "step=") {
		t.Fatalf("parent logger picked up child fields: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, ok := ParseLevel(" error "); !ok || lvl != LevelError {
		t.Fatalf("expected error level, got %v %v", lvl, ok)
	}
	if lvl, ok := ParseLevel("verbose"); ok || lvl != LevelInfo {
		t.Fatalf("expected info fallback, got %v %v", lvl, ok)
	}
	if LevelWarn.String() != "WARN" {
		t.Fatalf("unexpected name %s", LevelWarn)
	}
}

func TestNormalizeLoggerNil(t *testing.T) {
	if _, ok := NormalizeLogger(nil).(NopLogger); !ok {
		t.Fatal("expected NopLogger for nil")
	}
	if got := WithLoggerFields(nil, map[string]any{"a": 1}); got == nil {
		t.Fatal("expected usable logger")
	}
}
