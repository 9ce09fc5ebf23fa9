package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Model    ModelConfig    `json:"model"`
	Mapper   MapperConfig   `json:"mapper"`
	LiveScan LiveScanConfig `json:"live_scan"`
}

// ModelConfig holds configuration for the classifier backend
type ModelConfig struct {
	Backend string `json:"backend"` // "ollama" or "llamacpp"
	Name    string `json:"name"`
	URL     string `json:"url"`
}

// MapperConfig holds configuration for the category rule table
type MapperConfig struct {
	// RulesFile optionally points to a YAML rule table; empty means the
	// built-in table.
	RulesFile string `json:"rules_file"`
}

// LiveScanConfig holds configuration for continuous scanning
type LiveScanConfig struct {
	IntervalMS    int     `json:"interval_ms"`
	MinConfidence float64 `json:"min_confidence"`
	DeviceID      int     `json:"device_id"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Backend: "ollama",
			Name:    "llava",
			URL:     "http://localhost:11434",
		},
		Mapper: MapperConfig{
			RulesFile: "",
		},
		LiveScan: LiveScanConfig{
			IntervalMS:    800,
			MinConfidence: 0.2,
			DeviceID:      0,
			Width:         1280,
			Height:        720,
		},
	}
}

// LoadFromFile loads configuration from a JSON file and applies environment
// overrides on top.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv()
	return config, nil
}

// Load returns the default configuration with environment overrides applied.
func Load() *Config {
	config := Default()
	config.applyEnv()
	return config
}

// applyEnv overlays WASTE_SCANNER_* environment variables, loading a .env
// file first if one is present.
func (c *Config) applyEnv() {
	// Missing .env files are fine; the environment still applies.
	_ = godotenv.Load()

	if v := os.Getenv("WASTE_SCANNER_BACKEND"); v != "" {
		c.Model.Backend = v
	}
	if v := os.Getenv("WASTE_SCANNER_MODEL"); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv("WASTE_SCANNER_URL"); v != "" {
		c.Model.URL = v
	}
	if v := os.Getenv("WASTE_SCANNER_RULES"); v != "" {
		c.Mapper.RulesFile = v
	}
	if v := os.Getenv("WASTE_SCANNER_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LiveScan.IntervalMS = n
		}
	}
	if v := os.Getenv("WASTE_SCANNER_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.LiveScan.MinConfidence = f
		}
	}
	if v := os.Getenv("WASTE_SCANNER_DEVICE_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LiveScan.DeviceID = n
		}
	}
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Model.Backend != "ollama" && c.Model.Backend != "llamacpp" {
		return fmt.Errorf("model.backend must be \"ollama\" or \"llamacpp\"")
	}

	if c.Model.Name == "" {
		return fmt.Errorf("model.name cannot be empty")
	}

	if c.LiveScan.IntervalMS < 1 {
		return fmt.Errorf("live_scan.interval_ms must be positive")
	}

	if c.LiveScan.MinConfidence < 0 || c.LiveScan.MinConfidence > 1 {
		return fmt.Errorf("live_scan.min_confidence must be between 0 and 1")
	}

	if c.LiveScan.DeviceID < 0 {
		return fmt.Errorf("live_scan.device_id must not be negative")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "waste-scanner", "config.json")
}
