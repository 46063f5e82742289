package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.log")

	log, err := New("production", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("questions loaded")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"questions loaded"`) {
		t.Fatalf("expected JSON log line, got %q", data)
	}
}

func TestNewDevelopment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.log")

	log, err := New("local", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("debug enabled")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "debug enabled") {
		t.Fatalf("development logger must log debug, got %q", data)
	}
}
