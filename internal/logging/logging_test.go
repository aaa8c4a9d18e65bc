package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_FileGetsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoicedesk.log")
	logger := New(Options{Level: "info", File: path})

	logger.Info("invoice saved", zap.String("location", "/tmp/x.pdf"))
	logger.Debug("not written")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %s", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json, got %s", lines[0])
	}
	if entry["msg"] != "invoice saved" || entry["location"] != "/tmp/x.pdf" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNew_ConsoleOnlyWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Console: &buf})

	logger.Info("quiet")
	logger.Warn("email delivery failed")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info should not reach the console: %s", out)
	}
	if !strings.Contains(out, "email delivery failed") {
		t.Errorf("expected warning on console: %s", out)
	}
}

func TestNew_NoSinks(t *testing.T) {
	logger := New(Options{Level: "bogus"})
	logger.Error("dropped")
}

func TestSwitch_HoldKeepsConsoleClear(t *testing.T) {
	var term bytes.Buffer
	console := NewSwitch(&term)
	logger := New(Options{Level: "info", Console: console})

	console.Hold()
	logger.Warn("email delivery failed")
	if term.Len() != 0 {
		t.Fatalf("held console should stay empty, got %q", term.String())
	}

	if err := console.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if !strings.Contains(term.String(), "email delivery failed") {
		t.Errorf("expected held warning after release, got %q", term.String())
	}

	logger.Warn("after")
	if !strings.Contains(term.String(), "after") {
		t.Errorf("released console should pass writes through, got %q", term.String())
	}
}
