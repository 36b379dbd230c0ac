package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const ConfigFileName = "folio.json"

// Config represents the client configuration stored next to the project
type Config struct {
	// ServerURL is the Folio API base URL, e.g. "http://localhost:8080"
	ServerURL string `json:"server_url"`

	// Development arms the silent auto-login against the server's
	// dev-token endpoint. Never enable this against production.
	Development bool `json:"development,omitempty"`
}

// LoadFromCurrentDir reads folio.json from the working directory
func LoadFromCurrentDir() (*Config, error) {
	data, err := os.ReadFile(ConfigFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for obvious mistakes
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is empty. Please edit %s and add the API address", ConfigFileName)
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("server_url must start with http:// or https://")
	}
	return nil
}

// Save writes the configuration to folio.json in the working directory
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigFileName, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFileName, err)
	}

	return nil
}
