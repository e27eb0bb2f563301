package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"channelduel/internal/logging"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatal("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Fatal("warn line should be emitted")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := logging.WithMode(logging.WithPlayerID(context.Background(), 42), "classic")
	logging.WithContext(ctx, logger).Info("vote applied")

	out := buf.String()
	if !strings.Contains(out, `"player_id":42`) {
		t.Fatalf("expected player_id field, got %s", out)
	}
	if !strings.Contains(out, `"mode":"classic"`) {
		t.Fatalf("expected mode field, got %s", out)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected fallback logger")
	}
	logger.Info("discarded")
}
