// Package config loads the Tablero configuration file and environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI, TUI and daemon need at startup.
type Config struct {
	// APIURL is the backend origin every resource client talks to.
	APIURL string `yaml:"api_url"`
	// Listen is the daemon bind address.
	Listen string `yaml:"listen"`
	// DBPath is the daemon's SQLite file.
	DBPath string `yaml:"db_path"`
	// DemoSeed seeds one demo account per role on first start.
	DemoSeed bool `yaml:"demo_seed"`
	// DemoPassword is the shared password for the seeded demo accounts.
	DemoPassword string `yaml:"demo_password"`
}

// Default returns the configuration used when no file is present.
func Default(configDir string) Config {
	return Config{
		APIURL:       "http://127.0.0.1:7480",
		Listen:       "127.0.0.1:7480",
		DBPath:       filepath.Join(configDir, "tablero.db"),
		DemoSeed:     false,
		DemoPassword: "tablero-demo",
	}
}

// Dir returns the per-user config directory, creating nothing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tablero"), nil
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string, configDir string) (Config, error) {
	cfg := Default(configDir)

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if v := os.Getenv("TABLERO_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TABLERO_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("TABLERO_DB"); v != "" {
		cfg.DBPath = v
	}

	return cfg, nil
}
