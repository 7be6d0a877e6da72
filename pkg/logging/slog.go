// Package logging provides a compact, colored slog handler for tools
// built on the peerwire codec.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Options configures the PrettyHandler.
type Options struct {
	// Level is the minimum record level the handler emits.
	Level slog.Leveler
	// UseColor enables colored output.
	UseColor bool
	// TimeFormat customizes the timestamp format (default RFC3339).
	TimeFormat string
	// DisableTimestamp omits timestamps from output.
	DisableTimestamp bool
}

// PrettyHandler renders records as
// "time | LEVEL | message | key=value ...", colorized per level.
type PrettyHandler struct {
	opts   Options
	writer io.Writer
	mu     *sync.Mutex
	group  string
	attrs  []slog.Attr

	levelColors map[slog.Level]func(...interface{}) string
	dim         func(...interface{}) string
	msgColor    func(...interface{}) string
}

// NewPrettyHandler creates a PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *Options) *PrettyHandler {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Level == nil {
		o.Level = slog.LevelInfo
	}
	if o.TimeFormat == "" {
		o.TimeFormat = time.RFC3339
	}

	h := &PrettyHandler{opts: o, writer: w, mu: &sync.Mutex{}}
	h.initColors()
	return h
}

// Setup installs a PrettyHandler as the default slog logger.
func Setup(w io.Writer, level slog.Level, useColor bool) {
	handler := NewPrettyHandler(w, &Options{Level: level, UseColor: useColor})
	slog.SetDefault(slog.New(handler))
}

func (h *PrettyHandler) initColors() {
	plain := func(a ...interface{}) string { return fmt.Sprint(a...) }
	h.dim = plain
	h.msgColor = plain
	h.levelColors = map[slog.Level]func(...interface{}) string{
		slog.LevelDebug: plain,
		slog.LevelInfo:  plain,
		slog.LevelWarn:  plain,
		slog.LevelError: plain,
	}

	if !h.opts.UseColor {
		return
	}

	h.dim = color.New(color.FgHiBlack).SprintFunc()
	h.msgColor = color.New(color.FgCyan).SprintFunc()
	h.levelColors = map[slog.Level]func(...interface{}) string{
		slog.LevelDebug: color.New(color.FgMagenta).SprintFunc(),
		slog.LevelInfo:  color.New(color.FgBlue).SprintFunc(),
		slog.LevelWarn:  color.New(color.FgYellow).SprintFunc(),
		slog.LevelError: color.New(color.FgRed).SprintFunc(),
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle formats and writes the log record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	if !h.opts.DisableTimestamp {
		sb.WriteString(h.dim(r.Time.Format(h.opts.TimeFormat)))
		sb.WriteString(" | ")
	}

	levelStr := fmt.Sprintf("%-7s", strings.ToUpper(r.Level.String()))
	if colorize, ok := h.levelColors[r.Level]; ok {
		levelStr = colorize(levelStr)
	}
	sb.WriteString(levelStr)
	sb.WriteString(" | ")
	sb.WriteString(h.msgColor(r.Message))

	for _, attr := range h.attrs {
		h.appendAttr(&sb, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		h.appendAttr(&sb, attr)
		return true
	})

	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *PrettyHandler) appendAttr(sb *strings.Builder, attr slog.Attr) {
	value := attr.Value.Resolve()

	if value.Kind() == slog.KindGroup {
		for _, nested := range value.Group() {
			nested.Key = attr.Key + "." + nested.Key
			h.appendAttr(sb, nested)
		}
		return
	}

	key := attr.Key
	if h.group != "" {
		key = h.group + "." + key
	}

	sb.WriteByte(' ')
	sb.WriteString(h.dim(fmt.Sprintf("%s=%v", key, value.Any())))
}

// WithAttrs returns a handler that includes the given attributes on every
// record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a handler that qualifies subsequent attribute keys
// with the group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}
