package logging

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// LevelCritical is the slog level at and above which records go to the
// CRITICAL channel.
const LevelCritical = slog.LevelError + 4

// SeverityForLevel maps a slog level onto the severity set.
func SeverityForLevel(l slog.Level) Severity {
	switch {
	case l < slog.LevelDebug:
		return SeverityTrace
	case l < slog.LevelInfo:
		return SeverityDebug
	case l < slog.LevelWarn:
		return SeverityInfo
	case l < slog.LevelError:
		return SeverityWarning
	case l < LevelCritical:
		return SeverityError
	default:
		return SeverityCritical
	}
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level, when set, filters in addition to the router threshold.
	Level slog.Leveler
}

// Handler is a slog.Handler that writes through a Router so process
// diagnostics share the host's severity channels.
type Handler struct {
	router *Router
	opts   HandlerOptions
	attrs  string
	group  string
}

// NewHandler returns a handler routing slog records through router.
func NewHandler(router *Router, opts *HandlerOptions) *Handler {
	h := &Handler{router: router}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	if h.opts.Level != nil && l < h.opts.Level.Level() {
		return false
	}
	return h.router.Enabled(SeverityForLevel(l))
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)
	sb.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&sb, h.group, a)
		return true
	})

	var origin Origin
	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		origin = Origin{File: filepath.Base(frame.File), Line: frame.Line}
	}

	return h.router.Route(Record{
		Severity: SeverityForLevel(r.Level),
		Message:  sb.String(),
		Origin:   origin,
	})
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&sb, h.group, a)
	}
	h2 := *h
	h2.attrs = sb.String()
	return &h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = h.group + name + "."
	return &h2
}

func appendAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			appendAttr(sb, prefix, ga)
		}
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(a.Value.String())
}
