package logger

import (
	"os"
	"path/filepath"
	"testing"

	"tryout-service/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	var cfg config.Config
	cfg.Log.Level = "debug"
	cfg.Log.File = filepath.Join(t.TempDir(), "app.log")

	log, err := New(cfg)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Info("package built")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log output in file")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	var cfg config.Config
	cfg.Log.Level = "chatty"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
