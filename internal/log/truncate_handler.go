package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the default cap on logged attribute values.
// 256 runes keeps a useful prefix of an HTML snippet or cell dump while
// preventing a single debug line from flooding the log stream.
const DefaultMaxValueLen = 256

// TruncateHandler is a slog.Handler wrapper that caps oversized attribute
// values. The crawler routinely logs page fragments and extracted cell
// sequences at debug level; without a cap a single malformed page could
// emit megabytes on one line.
type TruncateHandler struct {
	// inner is the wrapped handler that performs actual output.
	inner slog.Handler

	// maxValueLen is the maximum rune length of a logged string value.
	maxValueLen int
}

// TruncateOption configures a TruncateHandler.
type TruncateOption func(*TruncateHandler)

// WithMaxValueLen sets the maximum rune length for logged string values.
func WithMaxValueLen(n int) TruncateOption {
	return func(h *TruncateHandler) {
		h.maxValueLen = n
	}
}

// NewTruncateHandler wraps an existing handler with value truncation.
func NewTruncateHandler(inner slog.Handler, opts ...TruncateOption) *TruncateHandler {
	h := &TruncateHandler{
		inner:       inner,
		maxValueLen: DefaultMaxValueLen,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewLogger creates a logger writing human-readable output to w.
// Verbose mode lowers the level to debug; otherwise only info and above
// are emitted.
func NewLogger(w io.Writer, verbose bool, opts ...TruncateOption) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTruncateHandler(inner, opts...))
}

// Enabled reports whether the wrapped handler handles records at the level.
func (h *TruncateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle truncates oversized attribute values and delegates to the wrapped
// handler.
func (h *TruncateHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(h.truncateAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes, truncated.
func (h *TruncateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	truncated := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		truncated = append(truncated, h.truncateAttr(attr))
	}
	return &TruncateHandler{
		inner:       h.inner.WithAttrs(truncated),
		maxValueLen: h.maxValueLen,
	}
}

// WithGroup returns a new handler with the given group name.
func (h *TruncateHandler) WithGroup(name string) slog.Handler {
	return &TruncateHandler{
		inner:       h.inner.WithGroup(name),
		maxValueLen: h.maxValueLen,
	}
}

// truncateAttr caps string values, recursing into groups.
func (h *TruncateHandler) truncateAttr(attr slog.Attr) slog.Attr {
	switch attr.Value.Kind() {
	case slog.KindString:
		attr.Value = slog.StringValue(h.truncate(attr.Value.String()))
	case slog.KindGroup:
		group := attr.Value.Group()
		truncated := make([]slog.Attr, 0, len(group))
		for _, g := range group {
			truncated = append(truncated, h.truncateAttr(g))
		}
		attr.Value = slog.GroupValue(truncated...)
	case slog.KindAny:
		// Stringify unknown values so they can be measured; most Any
		// values in this codebase are small (errors, URLs).
		if s := fmt.Sprintf("%v", attr.Value.Any()); utf8.RuneCountInString(s) > h.maxValueLen {
			attr.Value = slog.StringValue(h.truncate(s))
		}
	}
	return attr
}

// truncate shortens s to maxValueLen runes, appending an ellipsis marker
// noting how many runes were dropped.
func (h *TruncateHandler) truncate(s string) string {
	n := utf8.RuneCountInString(s)
	if n <= h.maxValueLen {
		return s
	}
	runes := []rune(s)
	return fmt.Sprintf("%s...(%d more)", string(runes[:h.maxValueLen]), n-h.maxValueLen)
}
