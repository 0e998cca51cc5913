package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.CountdownSeconds != 10 {
		t.Errorf("countdown = %d, want 10", cfg.CountdownSeconds)
	}
	if cfg.Inactivity() != 90*time.Second {
		t.Errorf("inactivity = %v, want 90s", cfg.Inactivity())
	}
	if cfg.LongPress() != 3*time.Second {
		t.Errorf("long press = %v, want 3s", cfg.LongPress())
	}
	if cfg.QuickReview() != 1200*time.Millisecond {
		t.Errorf("quick review = %v, want 1.2s", cfg.QuickReview())
	}
	if cfg.CaptureRetries != 3 {
		t.Errorf("retries = %d, want 3", cfg.CaptureRetries)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CountdownSeconds != DefaultCountdownSeconds {
		t.Errorf("countdown = %d", cfg.CountdownSeconds)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booth.yaml")
	data := []byte("countdown_seconds: 5\ncamera_driver: mock\nhttp_port: \"9000\"\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CountdownSeconds != 5 {
		t.Errorf("countdown = %d, want 5", cfg.CountdownSeconds)
	}
	if cfg.CameraDriver != "mock" {
		t.Errorf("driver = %q", cfg.CameraDriver)
	}
	if cfg.HTTPPort != "9000" {
		t.Errorf("port = %q", cfg.HTTPPort)
	}
	// Untouched keys keep their defaults.
	if cfg.InactivitySeconds != DefaultInactivitySeconds {
		t.Errorf("inactivity = %d", cfg.InactivitySeconds)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booth.yaml")
	if err := os.WriteFile(path, []byte("countdown_seconds: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml accepted")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOOTH_CAMERA_DRIVER", "gocv")
	t.Setenv("BOOTH_COUNTDOWN_SECONDS", "7")
	t.Setenv("BOOTH_INACTIVITY_SECONDS", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CameraDriver != "gocv" {
		t.Errorf("driver = %q", cfg.CameraDriver)
	}
	if cfg.CountdownSeconds != 7 {
		t.Errorf("countdown = %d, want 7", cfg.CountdownSeconds)
	}
	if cfg.InactivitySeconds != DefaultInactivitySeconds {
		t.Errorf("bad env value changed inactivity to %d", cfg.InactivitySeconds)
	}
}
