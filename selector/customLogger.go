package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Logger implements chanselect.Logger on top of two slog loggers, plain
// text for progress messages and JSON for errors.
type Logger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

func (l Logger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l Logger) Error(message string) {
	l.ErrorLog.Error(message)
}

// progressHandler prints "[time] [value]... message" lines. Attribute keys
// and groups are not shown.
type progressHandler struct {
	level slog.Leveler
	attrs []slog.Attr
	mu    *sync.Mutex
	out   io.Writer
}

func newProgressHandler(out io.Writer, level slog.Leveler) *progressHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &progressHandler{level: level, mu: &sync.Mutex{}, out: out}
}

func (h *progressHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *progressHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *progressHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *progressHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder
	line.WriteString(r.Time.Format("[2006/01/02 15:04:05]"))
	writeValue := func(a slog.Attr) bool {
		fmt.Fprintf(&line, " [%s]", a.Value)
		return true
	}
	for _, a := range h.attrs {
		writeValue(a)
	}
	r.Attrs(writeValue)
	line.WriteString(" ")
	line.WriteString(r.Message)
	line.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line.String())
	return err
}
