// Package config loads and validates the fitsync configuration file.
// Configuration is loaded once at startup by the composition root and passed
// explicitly to the components that need it.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fitsync/internal/utils"

	"github.com/go-playground/validator/v10"

	_ "embed"
)

//go:embed config.sample.json
var sampleConfig []byte

const (
	configFileName = "config.json"
	configDirPerm  = 0755
	configFilePerm = 0644
)

// Config represents the application configuration
type Config struct {
	Remote   RemoteConfig `json:"remote" validate:"required"`
	Sync     SyncConfig   `json:"sync"`
	Device   DeviceConfig `json:"device"`
	Database string       `json:"database_path,omitempty"` // custom SQLite path, defaults to the XDG data dir
}

// RemoteConfig describes the remote document store endpoint
type RemoteConfig struct {
	BaseURL string `json:"base_url" validate:"required,url"`
	// Account is the keyring account name for the API token; the
	// FITSYNC_TOKEN env var takes priority for scripting.
	Account string `json:"account,omitempty"`
}

// SyncConfig controls the sync engine
type SyncConfig struct {
	Enabled  bool   `json:"enabled"`
	AutoSync bool   `json:"auto_sync"`
	UserID   string `json:"user_id,omitempty"` // acting user; empty until sign-in
}

// DeviceConfig describes this installation in remote sync metadata
type DeviceConfig struct {
	DisplayName string `json:"display_name,omitempty"`
}

// Load reads the configuration from customPath, or from the default
// location. A missing file is created from the embedded sample first, so
// users always have something concrete to edit.
func Load(customPath string) (*Config, error) {
	path := customPath
	if path == "" {
		p, err := utils.ConfigPath(configFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if writeErr := writeSample(path); writeErr != nil {
			return nil, fmt.Errorf("failed to create sample config: %w", writeErr)
		}
		utils.Infof("[Config] created sample configuration at %s", path)
		data = sampleConfig
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Database != "" {
		expanded, err := utils.ExpandPath(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to expand database path: %w", err)
		}
		cfg.Database = expanded
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// writeSample writes the embedded sample config to path
func writeSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return err
	}
	return os.WriteFile(path, sampleConfig, configFilePerm)
}

// DeviceName returns the configured display name, falling back to the
// machine hostname
func (c *Config) DeviceName() string {
	if c.Device.DisplayName != "" {
		return c.Device.DisplayName
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "fitsync-device"
}
