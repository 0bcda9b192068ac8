package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Mode string `yaml:"mode"`
	} `yaml:"server"`

	Gemini struct {
		ApiKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
		// TimeoutSeconds bounds every outbound model call. Zero means the
		// built-in default; a hung request must not strand a session.
		TimeoutSeconds int `yaml:"timeoutSeconds"`
	} `yaml:"gemini"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Store struct {
		// Mode selects the profile store: "mongo" (persisted, with local
		// fallback on failure) or "local" (in-memory demo mode).
		Mode string `yaml:"mode"`
	} `yaml:"store"`

	Session struct {
		RoundLimit int `yaml:"roundLimit"`
		// TimeLimitSeconds enables the countdown end condition when > 0.
		TimeLimitSeconds int `yaml:"timeLimitSeconds"`
	} `yaml:"session"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	// Environment overrides for secrets so the file can be committed.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.ApiKey = key
	}
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		cfg.Database.URI = uri
	}

	return &cfg, nil
}
