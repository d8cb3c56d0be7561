// Package config loads process configuration for the gomokuzero commands.
//
// Values are layered: built-in defaults, then the JSON file
// $XDG_CONFIG_HOME/gomokuzero/config.json (if present), then a .env file in
// the working directory, then GOMOKU_* environment variables. Commands apply
// their flags on top and call Validate.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/yourusername/gomokuzero/pkg/engine"
)

// File is the config file path relative to the XDG config directories.
const File = "gomokuzero/config.json"

// Environment variable names.
const (
	EnvWidth          = "GOMOKU_WIDTH"
	EnvHeight         = "GOMOKU_HEIGHT"
	EnvNInRow         = "GOMOKU_N_IN_ROW"
	EnvForbiddenHands = "GOMOKU_FORBIDDEN_HANDS"
	EnvHost           = "GOMOKU_HOST"
	EnvPort           = "GOMOKU_PORT"
	EnvMaxWorkers     = "GOMOKU_MAX_WORKERS"
	EnvLogLevel       = "LOG_LEVEL"
)

// InvalidConfig reports a configuration value that failed to parse or validate.
type InvalidConfig struct {
	Field string
	Err   error
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s: %v", e.Field, e.Err)
}

func (e *InvalidConfig) Unwrap() error { return e.Err }

// Server holds the position service settings.
type Server struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	MaxWorkers int    `json:"max_workers"`
}

// Config is the full process configuration.
type Config struct {
	Board    engine.Config `json:"board"`
	Server   Server        `json:"server"`
	LogLevel string        `json:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Board: engine.DefaultConfig(),
		Server: Server{
			Host:       "localhost",
			Port:       8080,
			MaxWorkers: 32,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the XDG config file, .env and
// the environment. It does not validate; callers validate after applying flags.
func Load() (Config, error) {
	cfg := Default()

	if path, err := xdg.SearchConfigFile(File); err == nil {
		if err := readFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables looked up with lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{EnvWidth, &c.Board.Width},
		{EnvHeight, &c.Board.Height},
		{EnvNInRow, &c.Board.NInRow},
		{EnvPort, &c.Server.Port},
		{EnvMaxWorkers, &c.Server.MaxWorkers},
	}
	for _, f := range ints {
		v, ok := lookup(f.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &InvalidConfig{Field: f.name, Err: err}
		}
		*f.dst = n
	}

	if v, ok := lookup(EnvForbiddenHands); ok && v != "" {
		fh, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &InvalidConfig{Field: EnvForbiddenHands, Err: err}
		}
		c.Board.ForbiddenHands = fh
	}
	if v, ok := lookup(EnvHost); ok && v != "" {
		c.Server.Host = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the board configuration and server settings.
func (c Config) Validate() error {
	if err := c.Board.Validate(); err != nil {
		return &InvalidConfig{Field: "board", Err: err}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &InvalidConfig{Field: "server.port", Err: fmt.Errorf("port %d out of range", c.Server.Port)}
	}
	if c.Server.MaxWorkers < 1 {
		return &InvalidConfig{Field: "server.max_workers", Err: fmt.Errorf("must be at least 1, got %d", c.Server.MaxWorkers)}
	}
	return nil
}

// Save writes the configuration to the user's XDG config file.
func (c Config) Save() (string, error) {
	path, err := xdg.ConfigFile(File)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &InvalidConfig{Field: path, Err: err}
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return &InvalidConfig{Field: path, Err: err}
	}
	return nil
}
