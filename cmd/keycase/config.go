package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	keycase "github.com/SimonDaKappa/go-keycase"
)

// Config holds the settings of every keycase command. It can be loaded from
// a YAML file with --config; command line flags take precedence.
type Config struct {
	To           string      `yaml:"to"`
	From         string      `yaml:"from"`
	Output       string      `yaml:"output"`
	Indent       int         `yaml:"indent"`
	Strict       bool        `yaml:"strict"`
	KeyCacheSize int         `yaml:"key_cache_size"`
	MaxDepth     int         `yaml:"max_depth"`
	Serve        ServeConfig `yaml:"serve"`
}

// ServeConfig configures the demo server.
type ServeConfig struct {
	Listen                   string `yaml:"listen"`
	Internal                 string `yaml:"internal"`
	Header                   string `yaml:"header"`
	ValidateRequestBody      bool   `yaml:"validate_request_body"`
	RejectInvalidRequestBody bool   `yaml:"reject_invalid_request_body"`
	MaxBodyBytes             int64  `yaml:"max_body_bytes"`
}

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		To:           "camel",
		Output:       outputJSON,
		Indent:       2,
		KeyCacheSize: 1024,
		Serve: ServeConfig{
			Listen:              ":8080",
			Internal:            "camel",
			Header:              keycase.DefaultCaseFormatHeader,
			ValidateRequestBody: true,
			MaxBodyBytes:        1 << 20,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Output {
	case outputJSON, outputYAML:
	default:
		return fmt.Errorf("unsupported output %q: expected %s or %s", c.Output, outputJSON, outputYAML)
	}
	if c.Indent < 0 {
		return fmt.Errorf("indent must not be negative, got %d", c.Indent)
	}
	return nil
}

// MapperOptions resolves the case format names of c.
func (c *Config) MapperOptions() (keycase.Options, error) {
	to, err := keycase.ParseCaseFormat(c.To)
	if err != nil {
		return keycase.Options{}, fmt.Errorf("invalid --to: %w", err)
	}
	from, err := keycase.ParseCaseFormat(c.From)
	if err != nil {
		return keycase.Options{}, fmt.Errorf("invalid --from: %w", err)
	}
	return keycase.Options{
		ToCase:       to,
		FromCase:     from,
		KeyCacheSize: c.KeyCacheSize,
		MaxDepth:     c.MaxDepth,
	}, nil
}
