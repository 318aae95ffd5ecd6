package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewRedactsSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatJSON, Output: &buf, Level: slog.LevelInfo})

	logger.Info("loaded config", slog.String("api_key", "super-secret"))

	out := buf.String()
	if strings.Contains(out, "super-secret") {
		t.Fatalf("expected api_key to be redacted, got: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected redaction marker in output, got: %s", out)
	}
}

func TestWithTrialAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: FormatJSON, Output: &buf})
	ctx := NewContext(context.Background(), base)

	ctx = WithTrial(ctx, "bau", 2)
	FromContext(ctx).Info("year complete")

	out := buf.String()
	if !strings.Contains(out, `"scenario":"bau"`) || !strings.Contains(out, `"trial":2`) {
		t.Fatalf("expected scenario/trial fields in output, got: %s", out)
	}
	if ScenarioFromContext(ctx) != "bau" {
		t.Fatalf("expected ScenarioFromContext to return bau, got %q", ScenarioFromContext(ctx))
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("expected a non-nil default logger")
	}
}
