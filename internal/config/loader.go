package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// LoadFile reads and parses the topology document at path. A missing or
// unreadable file and a malformed document are both hard errors; callers
// treat them as fatal before any provisioning work starts.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses a topology document from raw YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
