// ABOUTME: Application configuration management
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// AppConfig holds the application's tunable settings.
type AppConfig struct {
	// Storage locations; empty values fall back to the config directory
	DatabasePath    string `toml:"database_path"`
	PreferencesPath string `toml:"preferences_path"`

	// Cap on persisted file-access grants, mirroring the OS limit
	PermissionAllowance int `toml:"permission_allowance"`

	// Settle time in milliseconds for the preset-modified indicator
	ModifiedDebounceMs int `toml:"modified_debounce_ms"`
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/soundscape/config.toml
func GetConfigPath() string {
	// First try current directory
	if _, err := os.Stat("./soundscape.toml"); err == nil {
		return "./soundscape.toml"
	}

	// Then try ~/.config/soundscape/config.toml
	home, err := os.UserHomeDir()
	if err != nil {
		return "./soundscape.toml"
	}

	return filepath.Join(home, ".config", "soundscape", "config.toml")
}

// LoadConfig loads configuration from a TOML file
// If the file doesn't exist or fails to load, returns default config
func LoadConfig(path string) (AppConfig, error) {
	// Try to read the file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse TOML
	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return config.withDefaults(), nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, config AppConfig) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	// Encode config as TOML
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default application configuration
func DefaultConfig() AppConfig {
	dir := filepath.Dir(GetConfigPath())

	return AppConfig{
		DatabasePath:        filepath.Join(dir, "soundscape.sqlite3"),
		PreferencesPath:     filepath.Join(dir, "preferences.toml"),
		PermissionAllowance: 512,
		ModifiedDebounceMs:  200,
	}
}

// withDefaults fills zero-valued fields from the defaults so a partial
// config file still yields a usable configuration
func (c AppConfig) withDefaults() AppConfig {
	defaults := DefaultConfig()

	if c.DatabasePath == "" {
		c.DatabasePath = defaults.DatabasePath
	}

	if c.PreferencesPath == "" {
		c.PreferencesPath = defaults.PreferencesPath
	}

	if c.PermissionAllowance <= 0 {
		c.PermissionAllowance = defaults.PermissionAllowance
	}

	if c.ModifiedDebounceMs <= 0 {
		c.ModifiedDebounceMs = defaults.ModifiedDebounceMs
	}

	return c
}
