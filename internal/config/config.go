// Package config provides configuration for the booth daemon.
// Values resolve in order: defaults, then booth.yaml, then BOOTH_* env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Timing defaults. These are the device's stated contract; keep them
// overridable but never hard-code them elsewhere.
const (
	DefaultCountdownSeconds  = 10
	DefaultInactivitySeconds = 90
	DefaultLongPressSeconds  = 3
	DefaultQuickReviewMS     = 1200
	DefaultCaptureRetries    = 3
	DefaultHTTPPort          = "8000"
	DefaultCameraDriver      = "rpicam"
)

// Config holds all booth daemon settings.
type Config struct {
	// Paths
	PhotoDir      string `yaml:"photo_dir"`
	TemplatesPath string `yaml:"templates_path"`

	// Session timing
	CountdownSeconds  int `yaml:"countdown_seconds"`
	InactivitySeconds int `yaml:"inactivity_seconds"`
	LongPressSeconds  int `yaml:"long_press_seconds"`
	QuickReviewMS     int `yaml:"quick_review_ms"`
	CaptureRetries    int `yaml:"capture_retries"`

	// Camera
	CameraDriver string `yaml:"camera_driver"` // "rpicam", "gocv" or "mock"
	CameraDevice int    `yaml:"camera_device"` // gocv device index
	CaptureW     int    `yaml:"capture_width"`
	CaptureH     int    `yaml:"capture_height"`

	// Operator surface
	HTTPPort string `yaml:"http_port"`
	GPIO     bool   `yaml:"gpio"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the stock configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		PhotoDir:          filepath.Join(home, "photobooth/data/photos"),
		TemplatesPath:     "public/templates/index.json",
		CountdownSeconds:  DefaultCountdownSeconds,
		InactivitySeconds: DefaultInactivitySeconds,
		LongPressSeconds:  DefaultLongPressSeconds,
		QuickReviewMS:     DefaultQuickReviewMS,
		CaptureRetries:    DefaultCaptureRetries,
		CameraDriver:      DefaultCameraDriver,
		CameraDevice:      0,
		CaptureW:          1920,
		CaptureH:          1080,
		HTTPPort:          DefaultHTTPPort,
		GPIO:              true,
		LogLevel:          "info",
	}
}

// Load reads the YAML config file at path over the defaults.
// A missing file is not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg.withEnv(), nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg.withEnv(), nil
}

// withEnv applies BOOTH_* environment overrides.
func (c Config) withEnv() Config {
	if v := os.Getenv("BOOTH_PHOTOS_DIR"); v != "" {
		c.PhotoDir = v
	}
	if v := os.Getenv("BOOTH_TEMPLATES_PATH"); v != "" {
		c.TemplatesPath = v
	}
	if v := os.Getenv("BOOTH_HTTP_PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("BOOTH_CAMERA_DRIVER"); v != "" {
		c.CameraDriver = v
	}
	if v := os.Getenv("BOOTH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BOOTH_COUNTDOWN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.CountdownSeconds = n
		}
	}
	if v := os.Getenv("BOOTH_INACTIVITY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.InactivitySeconds = n
		}
	}
	return c
}

// Countdown returns the per-shot countdown duration.
func (c Config) Countdown() time.Duration {
	return time.Duration(c.CountdownSeconds) * time.Second
}

// Inactivity returns the session inactivity timeout.
func (c Config) Inactivity() time.Duration {
	return time.Duration(c.InactivitySeconds) * time.Second
}

// LongPress returns the cancel hold duration.
func (c Config) LongPress() time.Duration {
	return time.Duration(c.LongPressSeconds) * time.Second
}

// QuickReview returns the per-shot review pause.
func (c Config) QuickReview() time.Duration {
	return time.Duration(c.QuickReviewMS) * time.Millisecond
}
