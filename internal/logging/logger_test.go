package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recall/internal/config"
	"recall/internal/logging"
	"recall/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("daemon started")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "recalld.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "daemon started") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if !strings.Contains(string(content), "INFO") {
		t.Fatalf("expected level label, got %q", content)
	}
}

func TestConsoleLoggerRendersJobSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "workflow")
	logger.Info("stage started",
		logging.String(logging.FieldJobID, "0123456789abcdef"),
		logging.String(logging.FieldStage, "transcribing"),
		logging.Int("progress", 30),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "[workflow]") {
		t.Fatalf("expected component in header, got %q", text)
	}
	if !strings.Contains(text, "Job 01234567 (transcribing)") {
		t.Fatalf("expected job subject, got %q", text)
	}
	if !strings.Contains(text, "- progress: 30") {
		t.Fatalf("expected progress field, got %q", text)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithJobID(context.Background(), "job-1")
	ctx = services.WithStage(ctx, "summarizing")
	ctx = services.WithOwner(ctx, "alice")
	logging.WithContext(ctx, logger).Warn("summary degraded", logging.Error(errors.New("quota")))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry[logging.FieldJobID] != "job-1" {
		t.Fatalf("expected job_id job-1, got %v", entry[logging.FieldJobID])
	}
	if entry[logging.FieldStage] != "summarizing" {
		t.Fatalf("expected stage summarizing, got %v", entry[logging.FieldStage])
	}
	if entry[logging.FieldOwnerID] != "alice" {
		t.Fatalf("expected owner alice, got %v", entry[logging.FieldOwnerID])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "keyframes skipped", "keyframes_skipped")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if !strings.Contains(string(content), `"`+key+`"`) {
			t.Fatalf("expected %s in warning, got %q", key, content)
		}
	}
}
