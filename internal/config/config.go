// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultModels is the ordered model fallback list used when no override is
// configured: primary first, degrading capability and cost.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}

// DefaultPort is the HTTP listen port when PORT is unset.
const DefaultPort = "8080"

// Config holds the settings shared by the server and CLI commands. Values
// come from an optional JSON file merged with environment variables; env
// wins for anything set in both.
type Config struct {
	APIKey      string   `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string   `json:"database_url,omitempty"` // PostgreSQL connection URL
	Port        string   `json:"port,omitempty"`         // HTTP listen port
	Models      []string `json:"models,omitempty"`       // model fallback order override
	Verbose     bool     `json:"verbose,omitempty"`      // print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables:
// GEMINI_API_KEY, DATABASE_URL, PORT, and NEXUS_MODELS (comma separated).
func FromEnv() *Config {
	cfg := &Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        os.Getenv("PORT"),
	}
	if models := os.Getenv("NEXUS_MODELS"); models != "" {
		for _, m := range strings.Split(models, ",") {
			if m = strings.TrimSpace(m); m != "" {
				cfg.Models = append(cfg.Models, m)
			}
		}
	}
	return cfg
}

// MergeWithEnv overlays environment values onto the config; env values win
// where both are set. Missing port and models fall back to defaults.
func (c *Config) MergeWithEnv() *Config {
	env := FromEnv()
	result := *c

	if env.APIKey != "" {
		result.APIKey = env.APIKey
	}
	if env.DatabaseURL != "" {
		result.DatabaseURL = env.DatabaseURL
	}
	if env.Port != "" {
		result.Port = env.Port
	}
	if len(env.Models) > 0 {
		result.Models = env.Models
	}

	if result.Port == "" {
		result.Port = DefaultPort
	}
	if len(result.Models) == 0 {
		result.Models = append([]string(nil), DefaultModels...)
	}
	return &result
}

// Validate checks that the configuration can actually drive a generation.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY (or api_key) is required")
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("config error: at least one model is required")
	}
	for _, m := range c.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("config error: model names must be non-empty")
		}
	}
	return nil
}
