// Package config loads host configuration from TOML, with environment
// variable overrides for secrets.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type GeneratorConfig struct {
	// Provider selects the backend: "openai", "http" or "none".
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Endpoint string `toml:"endpoint"`
}

type StoreConfig struct {
	// Backend selects persistence: "memory", "file", "redis" or "postgres".
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Postgres string `toml:"postgres"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type Config struct {
	Generator GeneratorConfig `toml:"generator"`
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
	LogLevel  string          `toml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{Provider: "none"},
		Store:     StoreConfig{Backend: "memory"},
		Server:    ServerConfig{Addr: ":8080"},
		LogLevel:  "info",
	}
}

// Load reads a TOML config file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadOrDefault loads the file if it exists and falls back to defaults
// otherwise. Environment overrides apply either way.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return Load(path)
}

// applyEnv lets secrets live outside the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("MOSAIC_API_KEY"); v != "" {
		c.Generator.APIKey = v
	}
	if v := os.Getenv("MOSAIC_GENERATOR_ENDPOINT"); v != "" {
		c.Generator.Endpoint = v
	}
	if v := os.Getenv("MOSAIC_REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("MOSAIC_POSTGRES_URL"); v != "" {
		c.Store.Postgres = v
	}
}
