package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "debug", Format: "json"}, &buf)

	log.With(String("component", "engine")).Info(context.Background(), "status changed",
		String("status", "NORMAL"),
		Bool("connected", true),
		Err(errors.New("boom")),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]any{
		"msg":       "status changed",
		"component": "engine",
		"status":    "NORMAL",
		"connected": true,
		"error":     "boom",
	} {
		if rec[key] != want {
			t.Fatalf("field %s = %v, want %v", key, rec[key], want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "warn"}, &buf)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestWithRequestLoggerKeepsExistingID(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "abc")
	ctx, _ = WithRequestLogger(ctx, Noop())
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Fatalf("RequestIDFromContext = %q, want abc", got)
	}

	fresh, _ := WithRequestLogger(context.Background(), nil)
	if RequestIDFromContext(fresh) == "" {
		t.Fatalf("WithRequestLogger did not assign a request id")
	}
}

func TestFromContextFallsBack(t *testing.T) {
	fallback := Noop()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatalf("FromContext without logger did not return fallback")
	}
	var buf bytes.Buffer
	l := NewWithWriter(Config{}, &buf)
	ctx := ContextWithLogger(context.Background(), l)
	if got := FromContext(ctx, fallback); got != l {
		t.Fatalf("FromContext did not return stored logger")
	}
}
