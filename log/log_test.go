package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestMake_WritesMessage(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false))
	l.Info("hello", slog.String("key", "value"))

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "key=value") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestMake_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelWarn), WithPretty(false))

	l.Trace("too quiet")
	l.Debug("too quiet")
	l.Info("too quiet")

	if buf.Len() != 0 {
		t.Fatalf("expected filtered output, got %q", buf.String())
	}

	l.Warn("loud enough")

	if !strings.Contains(buf.String(), "loud enough") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestMake_TraceLevelLabel(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelTrace), WithPretty(false))
	l.Trace("tracing")

	out := buf.String()
	if !strings.Contains(out, "TRACE") {
		t.Errorf("expected TRACE label, got %q", out)
	}

	if strings.Contains(out, "DEBUG-4") {
		t.Errorf("raw slog spelling leaked: %q", out)
	}
}

func TestMake_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON))
	l.Info("structured", slog.Int("n", 7))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if record["msg"] != "structured" {
		t.Errorf("got msg %v, want structured", record["msg"])
	}

	if record["n"] != float64(7) {
		t.Errorf("got n %v, want 7", record["n"])
	}
}

func TestWrap_OverridesConfig(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelError))
	if l.Level() != LevelError {
		t.Fatalf("got level %v, want error", l.Level())
	}

	w := l.Wrap(WithLevel(LevelDebug))
	if w.Level() != LevelDebug {
		t.Errorf("got level %v, want debug", w.Level())
	}

	// The original logger is unchanged.
	if l.Level() != LevelError {
		t.Errorf("wrap mutated receiver: %v", l.Level())
	}
}

func TestWith_AddsAttrs(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false)).With(slog.String("component", "test"))
	l.Info("tagged")

	if !strings.Contains(buf.String(), "component=test") {
		t.Errorf("expected bound attribute, got %q", buf.String())
	}
}

func TestZeroValueLogger_Discards(t *testing.T) {
	var l Logger

	// Must not panic.
	l.Info("nowhere")
	l.Error("nowhere")

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("zero value accessors: %v/%v", l.Level(), l.Format())
	}
}
