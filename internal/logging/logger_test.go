package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewForDirCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewForDir(dir, "info", "json")
	if err != nil {
		t.Fatalf("NewForDir: %v", err)
	}
	logger.Info("hello", String("component", "test"))
	data, err := os.ReadFile(filepath.Join(dir, "reelsmith.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected log record in file, got %q", string(data))
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithJobID(context.Background(), 7)
	ctx = services.WithStage(ctx, "compose")
	ctx = services.WithRequestID(ctx, "abc123")

	fields := ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	keys := make(map[string]struct{}, len(fields))
	for _, attr := range fields {
		keys[attr.Key] = struct{}{}
	}
	for _, want := range []string{FieldJobID, FieldStage, FieldCorrelationID} {
		if _, ok := keys[want]; !ok {
			t.Fatalf("missing field %s", want)
		}
	}
}

func TestNoopHandlerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
