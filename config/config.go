// Package config loads retry transport configuration from YAML files and
// environment variables, with sensible defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is the configuration file consulted by Load when present.
const DefaultFile = "requeue.yaml"

// envPrefix namespaces the environment variables read by Load, e.g.
// REQUEUE_RETRY_TIMEOUT=250ms maps to retry.timeout.
const envPrefix = "REQUEUE_"

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The requeue.yaml configuration file
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	return LoadFile(DefaultFile)
}

// LoadFile behaves like Load but reads the given YAML file instead of the
// default one. A missing file is not an error; defaults and environment
// variables still apply.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// The YAML file is optional
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		fmt.Printf("Warning: could not load %s: %v\n", path, err)
	}

	if err := loadEnv(k); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return unmarshal(k)
}

// LoadBytes loads configuration from in-memory YAML on top of the defaults.
// Environment variables still take priority.
func LoadBytes(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := loadEnv(k); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return unmarshal(k)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"log.level":  "info",
		"log.pretty": false,

		// No methods are managed until explicitly configured
		"retry.timeout": "0s",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

func loadEnv(k *koanf.Koanf) error {
	return k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// Convert REQUEUE_RETRY_TIMEOUT to retry.timeout
			key = strings.TrimPrefix(key, envPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
