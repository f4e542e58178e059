package logs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "info", Stderr: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("shown", "steps", 3)
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug record passed an info logger")
	}
	if !strings.Contains(buf.String(), "msg=shown") || !strings.Contains(buf.String(), "steps=3") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bfi.log")
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "warn", Stderr: &buf, File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Warn("journal unavailable", "path", "x.db")
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log file is not JSON: %v (%q)", err, data)
	}
	if record["msg"] != "journal unavailable" || record["path"] != "x.db" {
		t.Errorf("unexpected record %v", record)
	}
	if !strings.Contains(buf.String(), "journal unavailable") {
		t.Error("expected record on the terminal handler too")
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	if l, err := ParseLevel("ERROR"); err != nil || l.String() != "ERROR" {
		t.Errorf("ParseLevel(ERROR) = %v, %v", l, err)
	}
}
