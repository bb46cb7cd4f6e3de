// Package config provides configuration loading and validation for pystyle.
// Configuration can be supplied via a YAML file (e.g. .pystyle.yaml) or
// programmatically for use in tests.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = ".pystyle.yaml"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the top-level configuration structure for pystyle.
type Config struct {
	// Extensions lists the file name suffixes that are analyzed.
	// Example YAML:
	//   extensions: [".py", ".pyi"]
	Extensions []string `yaml:"extensions"`

	// Format selects the output format: text, json or sarif.
	Format string `yaml:"format"`

	// Color is one of auto, always or never.
	Color string `yaml:"color"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Extensions: []string{".py"},
		Format:     "text",
		Color:      ColorAuto,
	}
}

// Load reads a YAML config file from path and merges it on top of the
// default configuration. Missing fields keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("pystyle: reading config %q: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("pystyle: parsing config %q: %w", path, err)
	}

	if len(file.Extensions) > 0 {
		cfg.Extensions = file.Extensions
	}
	if file.Format != "" {
		cfg.Format = file.Format
	}
	if file.Color != "" {
		cfg.Color = file.Color
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pystyle: config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values. Format names are checked by the report
// package when the reporter is built.
func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return errors.New("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("empty extension in %q", c.Extensions)
		}
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", c.Color)
	}
	return nil
}
