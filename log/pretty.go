package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for pretty printing.
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// prettyHandler is a colorized text handler for interactive sessions: a
// dimmed timestamp, a level tag colored by severity, the message, then
// "key=value" attributes with gray keys.
type prettyHandler struct {
	opts  slog.HandlerOptions
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		if stamp := h.replaced(slog.Time(slog.TimeKey, r.Time)); !stamp.Equal(slog.Attr{}) {
			buf.WriteString(colorGray)
			buf.WriteString(stamp.Value.String())
			buf.WriteString(colorReset)
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(levelColor(r.Level))
	buf.WriteString(strings.ToUpper(Level(r.Level).String()))
	buf.WriteString(colorReset)
	buf.WriteByte(' ')

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fmt.Fprintf(buf, "%s%s:%d%s ",
				colorGray, src.File, src.Line, colorReset)
		}
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(buf, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &clone
}

func (h *prettyHandler) WithGroup(string) slog.Handler {
	// Groups are flattened in pretty output.
	return h
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	a.Value = a.Value.Resolve()

	buf.WriteByte(' ')
	buf.WriteString(colorGray)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(colorReset)
	buf.WriteString(a.Value.String())
}

// replaced runs the configured ReplaceAttr on one attribute.
func (h *prettyHandler) replaced(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(DefaultTimeLayout))
		}

		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	case level >= slog.LevelDebug:
		return colorCyan
	default:
		return colorGray
	}
}
