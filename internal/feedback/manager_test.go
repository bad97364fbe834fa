package feedback

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writePlugin(t *testing.T, dir, name, manifest string) {
	t.Helper()
	pluginDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatalf("mkdir plugin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "say", `{"name":"say","version":"1.0.0","description":"espeak speaker","executable":"speak.sh"}`)
	writePlugin(t, dir, "beep", `{"name":"beep","version":"0.1.0","executable":"beep.sh"}`)

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if got := len(m.List()); got != 2 {
		t.Fatalf("expected 2 plugins, got %d", got)
	}

	p, err := m.Get("say")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.Manifest.Version != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0", p.Manifest.Version)
	}
	if want := filepath.Join(dir, "say", "speak.sh"); p.Executable != want {
		t.Errorf("executable = %q, want %q", p.Executable, want)
	}
}

func TestManager_DiscoverSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "good", `{"name":"good","executable":"run.sh"}`)
	writePlugin(t, dir, "bad", `{not json`)

	// A subdirectory without a manifest is ignored too.
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if got := len(m.List()); got != 1 {
		t.Errorf("expected 1 plugin, got %d", got)
	}
}

func TestManager_DiscoverMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover over a missing directory should succeed, got %v", err)
	}
	if got := len(m.List()); got != 0 {
		t.Errorf("expected no plugins, got %d", got)
	}
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	_, err := m.Get("nope")
	if !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}
