package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds per-user defaults loaded from a YAML file, for example:
//
//	output: json
//	subscription: 00000000-0000-0000-0000-000000000000
//
// Values given on the command line take precedence.
type Config struct {
	Output       string `yaml:"output"`
	Subscription string `yaml:"subscription"`
}

// LoadConfig reads the config file at path. A missing file returns an empty config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// apply copies the configured defaults onto s.
func (c *Config) apply(s *Session) error {
	if c.Output != "" {
		format, err := ParseOutputFormat(c.Output)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		s.OutputFormat = format
	}
	if c.Subscription != "" {
		s.SubscriptionID = c.Subscription
	}
	return nil
}

// configEnv returns the environment variable overriding the config file path for prog, e.g.
// AZ_CONFIG.
func configEnv(prog string) string {
	return strings.ToUpper(strings.ReplaceAll(prog, "-", "_")) + "_CONFIG"
}
