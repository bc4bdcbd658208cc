package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"stitcher/internal/logging"
	"stitcher/internal/services"
)

func TestConsoleHandlerRendersComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	logging.NewComponentLogger(logger, "merge").Info("stage started", logging.Int("clips", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO merge: stage started") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "clips=3") {
		t.Fatalf("expected clips attr in %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	logger.Info("note", logging.String("reason", "no audio track"))
	if !strings.Contains(buf.String(), `reason="no audio track"`) {
		t.Fatalf("expected quoted value in %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "suppressed") {
		t.Fatalf("info line should be suppressed, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn line missing from %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsStandardFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	ctx := services.WithUserID(context.Background(), "u1")
	ctx = services.WithJobID(ctx, "job-42")
	ctx = services.WithStage(ctx, "enrich")

	logging.WithContext(ctx, logger).Info("step")
	line := buf.String()
	for _, fragment := range []string{"user_id=u1", "job_id=job-42", "stage=enrich"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}
