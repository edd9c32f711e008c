// Package config resolves process configuration once at startup. Components
// receive the values they need explicitly; nothing reads the environment at
// call time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type AIConfig struct {
	// BaseURL of the external AI server. A missing value falls back to the
	// local default; it never aborts startup, only individual calls fail.
	BaseURL string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server:  ServerConfig{Port: 3001},
		AI:      AIConfig{BaseURL: "http://localhost:8001"},
		Storage: StorageConfig{DataDir: defaultDataDir()},
		Log:     LogConfig{Level: "info"},
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "mingle")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "mingle-data"
	}
	return filepath.Join(home, ".mingle")
}

// Load reads configuration from an optional .env file and MINGLE_*
// environment variables layered over built-in defaults.
func Load() Config {
	// Absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := defaults()
	applyEnvOverrides(&cfg)
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv("MINGLE_PORT"); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			cfg.Server.Port = port
		} else {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var MINGLE_PORT=%q: %v. Using default value.\n", raw, err)
		}
	}
	// AI_SERVER_URL is the name the original deployment scripts use; the
	// MINGLE_-prefixed variant wins when both are set.
	if v := os.Getenv("AI_SERVER_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("MINGLE_AI_SERVER_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("MINGLE_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("MINGLE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
