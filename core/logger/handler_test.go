package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"log/slog"
)

func newTestHandler(buf *bytes.Buffer, format logFormat) (*structuredHandler, *asyncWriter) {
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	return h, aw
}

func captureLine(t *testing.T, buf *bytes.Buffer, aw *asyncWriter) string {
	t.Helper()
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line")
	}
	return line
}

func TestHandlerKVKeyOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	h, aw := newTestHandler(buf, formatKV)

	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	log := slog.New(h).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "batch.started",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)

	line := captureLine(t, buf, aw)
	tokens := strings.Split(line, " ")
	want := []string{"ts=", "level=INFO", "component=app", "event=batch.started", "status=ok", "rid=rid-123"}
	if len(tokens) < len(want) {
		t.Fatalf("short line: %s", line)
	}
	for i, prefix := range want {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %q, want prefix %q", i, tokens[i], prefix)
		}
	}
}

func TestHandlerJSONFieldsAndOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	h, aw := newTestHandler(buf, formatJSON)

	ctx := WithRID(Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)
	log := slog.New(h).With("component", "media.lookup")
	LogEvent(ctx, log, slog.LevelError, "lookup.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("err_code", "LOOKUP_FAIL"),
	)

	line := captureLine(t, buf, aw)
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("not valid JSON: %v (%s)", err, line)
	}
	for key, want := range map[string]string{
		"level":     "ERROR",
		"component": "media.lookup",
		"event":     "lookup.failed",
		"status":    "fail",
		"err":       "boom",
		"rid":       "rid-json",
	} {
		if got, _ := decoded[key].(string); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}

	pos := -1
	for _, marker := range []string{`"ts":`, `"level":`, `"component":`, `"event":`, `"status":`, `"rid":`} {
		idx := strings.Index(line, marker)
		if idx <= pos {
			t.Fatalf("marker %s out of order in %s", marker, line)
		}
		pos = idx
	}
}

func TestHandlerCompactsRID(t *testing.T) {
	buf := &bytes.Buffer{}
	h, aw := newTestHandler(buf, formatKV)

	rawRID := "123:456:789"
	ctx := WithRID(Background(), rawRID)
	log := slog.New(h).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "rid.check", slog.String("status", "ok"))

	line := captureLine(t, buf, aw)
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid in %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full is JSON-only, got %s", line)
	}
}

func TestHandlerDurationKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	h, aw := newTestHandler(buf, formatKV)

	log := slog.New(h).With("component", "app")
	LogEvent(Background(), log, slog.LevelInfo, "timing",
		slog.Duration("duration", 1500*time.Millisecond),
		slog.Duration("send_duration", 250*time.Millisecond),
	)

	line := captureLine(t, buf, aw)
	if !strings.Contains(line, "duration_ms=1500") {
		t.Fatalf("expected duration_ms=1500 in %s", line)
	}
	if !strings.Contains(line, "send_duration_ms=250") {
		t.Fatalf("expected send_duration_ms=250 in %s", line)
	}
}

func TestHandlerDropsInvalidOutcome(t *testing.T) {
	buf := &bytes.Buffer{}
	h, aw := newTestHandler(buf, formatKV)

	log := slog.New(h).With("component", "app")
	LogEvent(Background(), log, slog.LevelInfo, "outcome.check",
		slog.String("outcome", "exploded"),
	)

	line := captureLine(t, buf, aw)
	if strings.Contains(line, "outcome=") {
		t.Fatalf("invalid outcome should be dropped, got %s", line)
	}
}
