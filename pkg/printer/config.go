// Package printer dispatches finished sheets to the CUPS spooler and owns
// the small on-disk printer configuration.
package printer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the printer configuration read at print time.
type Config struct {
	QueueName string `json:"printer"`
}

// Configured reports whether a queue is set.
func (c Config) Configured() bool { return c.QueueName != "" }

// Store persists Config as printer.json next to the photos, the same file
// the device has always used.
type Store struct {
	path string
}

// NewStore returns a store rooted in dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, "printer.json")}
}

// Load reads the config. A missing file is an empty config, not an error.
func (s *Store) Load() (Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("printer: read %s: %w", s.path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("printer: parse %s: %w", s.path, err)
	}
	return cfg, nil
}

// Save writes the config.
func (s *Store) Save(cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("printer: mkdir: %w", err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("printer: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("printer: write %s: %w", s.path, err)
	}
	return nil
}
