// Package daemon manages the engage daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Storage       StorageConfig       `toml:"storage"`
	Points        PointsConfig        `toml:"points"`
	Notifications NotificationsConfig `toml:"notifications"`
	Telemetry     TelemetryConfig     `toml:"telemetry"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls where the SQLite store lives.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// PointsConfig sets the flat per-action grants.
type PointsConfig struct {
	Purchase int64 `toml:"purchase"`
	Donation int64 `toml:"donation"`
	Activity int64 `toml:"activity"`
}

// NotificationsConfig sets the auto-dismiss timeouts, in seconds.
type NotificationsConfig struct {
	BadgeSeconds   int `toml:"badge_seconds"`
	LevelUpSeconds int `toml:"level_up_seconds"`
	PointsSeconds  int `toml:"points_seconds"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := engageHome()
	return Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8180,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: filepath.Join(homeDir, "data"),
		},
		Points: PointsConfig{
			Purchase: 10,
			Donation: 25,
			Activity: 30,
		},
		Notifications: NotificationsConfig{
			BadgeSeconds:   10,
			LevelUpSeconds: 5,
			PointsSeconds:  3,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
	}
}

// LoadConfig reads config from $ENGAGE_HOME/config.toml, falling back
// to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(engageHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to $ENGAGE_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(engageHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// engageHome returns the engage data directory.
func engageHome() string {
	if env := os.Getenv("ENGAGE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".engage")
}

// EngageHome is exported for use by other packages.
func EngageHome() string {
	return engageHome()
}
