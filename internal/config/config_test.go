package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, `
[run]
minify = true
enable_breakpoints = true
direct_start = true
tape_size = 100

[journal]
path = "runs.db"

[log]
level = "debug"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !c.Run.Minify || !c.Run.EnableBreakpoints || !c.Run.DirectStart {
		t.Errorf("expected run flags to be set, got %+v", c.Run)
	}
	if c.Run.TapeSize != 100 {
		t.Errorf("expected tape_size 100, got %d", c.Run.TapeSize)
	}
	// Unset keys keep their defaults.
	if c.Run.Speed != 10 {
		t.Errorf("expected default speed 10, got %d", c.Run.Speed)
	}
	if c.Journal.Path != "runs.db" || c.Log.Level != "debug" {
		t.Errorf("unexpected journal/log %+v %+v", c.Journal, c.Log)
	}
	if c.Path != path {
		t.Errorf("expected Path %s, got %s", path, c.Path)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []string{
		"[run]\ntape_size = 0\n",
		"[run]\nspeed = -3\n",
		"[log]\nlevel = \"loud\"\n",
		"[run\n",
	}
	for _, content := range tests {
		path := writeFile(t, t.TempDir(), content)
		if _, err := Load(path); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "[run]\nascii_view = true\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if !c.Run.ASCIIView {
		t.Error("expected ascii_view from parent directory")
	}
	if !strings.HasSuffix(c.Path, FileName) {
		t.Errorf("unexpected path %s", c.Path)
	}
}

func TestStartSpeed(t *testing.T) {
	tests := []struct {
		run   Run
		speed int
		super bool
	}{
		{Run{Speed: 7}, 7, false},
		{Run{Speed: 7, DirectStart: true}, 100, false},
		{Run{DirectStart: true, StartSuperSpeed: true}, 0, true},
	}
	for _, tt := range tests {
		speed, super := tt.run.StartSpeed()
		if speed != tt.speed || super != tt.super {
			t.Errorf("%+v: got %d %v, want %d %v", tt.run, speed, super, tt.speed, tt.super)
		}
	}
}
