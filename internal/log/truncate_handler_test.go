package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level is info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Debug("hidden")
		logger.Info("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("debug message emitted without verbose")
		}
		if !strings.Contains(out, "shown") {
			t.Error("info message not emitted")
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("visible")
		if !strings.Contains(buf.String(), "visible") {
			t.Error("debug message not emitted in verbose mode")
		}
	})
}

func TestTruncateHandler(t *testing.T) {
	t.Parallel()

	t.Run("caps oversized string values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false, WithMaxValueLen(10))

		logger.Info("page fetched", "body", strings.Repeat("x", 100))

		out := buf.String()
		if !strings.Contains(out, "...(90 more)") {
			t.Errorf("oversized value not truncated: %s", out)
		}
		if strings.Contains(out, strings.Repeat("x", 11)) {
			t.Errorf("value longer than the cap leaked: %s", out)
		}
	})

	t.Run("short values pass through unchanged", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false, WithMaxValueLen(10))

		logger.Info("page fetched", "url", "short")
		if !strings.Contains(buf.String(), "url=short") {
			t.Errorf("short value altered: %s", buf.String())
		}
	})

	t.Run("truncation counts runes, not bytes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false, WithMaxValueLen(4))

		logger.Info("heading", "name", "インテリアパネル")
		if !strings.Contains(buf.String(), "インテリ...(4 more)") {
			t.Errorf("rune truncation wrong: %s", buf.String())
		}
	})

	t.Run("group attributes are truncated recursively", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false, WithMaxValueLen(5))

		logger.Info("grouped", slog.Group("page", "body", "aaaaaaaaaa"))
		if !strings.Contains(buf.String(), "...(5 more)") {
			t.Errorf("group value not truncated: %s", buf.String())
		}
	})

	t.Run("WithAttrs preserves truncation", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false, WithMaxValueLen(5)).With("ctx", "aaaaaaaaaa")

		logger.Info("message")
		if !strings.Contains(buf.String(), "...(5 more)") {
			t.Errorf("With-attached value not truncated: %s", buf.String())
		}
	})
}
