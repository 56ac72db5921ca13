package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "3001" {
		t.Errorf("expected default port 3001, got %q", cfg.Port)
	}
	if cfg.MaxVisible != 20 {
		t.Errorf("expected default max visible 20, got %d", cfg.MaxVisible)
	}
	if cfg.DebounceWindow != 750*time.Millisecond {
		t.Errorf("expected default debounce window 750ms, got %s", cfg.DebounceWindow)
	}
	if cfg.SearchDriver != "sqlite" {
		t.Errorf("expected default search driver sqlite, got %q", cfg.SearchDriver)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_VISIBLE", "5")
	t.Setenv("DEBOUNCE_WINDOW", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port override, got %q", cfg.Port)
	}
	if cfg.MaxVisible != 5 {
		t.Errorf("expected max visible override, got %d", cfg.MaxVisible)
	}
	if cfg.DebounceWindow != 250*time.Millisecond {
		t.Errorf("expected debounce window override, got %s", cfg.DebounceWindow)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Error("expected an error for an unparseable duration")
	}
}

func TestLoadMapConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("style: /data/custom.json\ncenter_lat: 16.047079\ncenter_lon: 108.20623\nzoom: 10\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	mc := LoadMapConfig(path)
	if mc.Style != "/data/custom.json" || mc.Zoom != 10 {
		t.Errorf("unexpected map config %+v", mc)
	}
	if mc.CenterLat != 16.047079 {
		t.Errorf("unexpected center %v", mc.CenterLat)
	}
}

func TestLoadMapConfigMissingFileUsesDefaults(t *testing.T) {
	mc := LoadMapConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if mc != DefaultMapConfig() {
		t.Errorf("expected defaults for a missing file, got %+v", mc)
	}
}

func TestLoadMapConfigBadYAMLUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("zoom: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	mc := LoadMapConfig(path)
	if mc != DefaultMapConfig() {
		t.Errorf("expected defaults for unparseable yaml, got %+v", mc)
	}
}
