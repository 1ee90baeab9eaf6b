// Package config provides configuration management for HackMaster Pi.
//
// Config file locations (priority order):
//  1. $HACKMASTER_CONFIG
//  2. ./hackmaster.yaml
//  3. $XDG_CONFIG_HOME/hackmaster/config.yaml
//  4. ~/.config/hackmaster/config.yaml
//  5. /etc/hackmaster/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hackmaster/internal/wordlist"
)

const (
	defaultAddr         = ":4000"
	defaultDBPath       = "./hackmaster.db"
	defaultWordlistDir  = "./static/wordlists"
	defaultSampleLines  = 10
	defaultMaxBodyBytes = 1 << 20
	defaultLogLevel     = "info"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{Version: 1}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}

	if c.Database.Path == "" {
		c.Database.Path = defaultDBPath
	}

	if c.Wordlists.Dir == "" {
		c.Wordlists.Dir = defaultWordlistDir
	}
	if c.Wordlists.SampleLines == 0 {
		c.Wordlists.SampleLines = defaultSampleLines
	}
	if c.Wordlists.MaxBodyBytes == 0 {
		c.Wordlists.MaxBodyBytes = defaultMaxBodyBytes
	}

	if c.Generator.MinLength == 0 {
		c.Generator.MinLength = wordlist.DefaultMinLength
	}
	if c.Generator.FilterNetworkName == nil {
		filter := true
		c.Generator.FilterNetworkName = &filter
	}

	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// Validate rejects values the service cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Generator.MinLength < 1 {
		errs = append(errs, fmt.Errorf("generator.min_length must be positive, got %d", c.Generator.MinLength))
	}
	if c.Wordlists.SampleLines < 0 {
		errs = append(errs, fmt.Errorf("wordlists.sample_lines must not be negative, got %d", c.Wordlists.SampleLines))
	}
	if c.Wordlists.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("wordlists.max_body_bytes must not be negative, got %d", c.Wordlists.MaxBodyBytes))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// GeneratorOptions converts the generator section into wordlist options
func (c *Config) GeneratorOptions() wordlist.Options {
	opts := wordlist.DefaultOptions()
	if c.Generator.MinLength > 0 {
		opts.MinLength = c.Generator.MinLength
	}
	if c.Generator.FilterNetworkName != nil {
		opts.FilterNetworkName = *c.Generator.FilterNetworkName
	}
	if c.Generator.Separators != nil {
		opts.Separators = c.Generator.Separators
	}
	if c.Generator.Fillers != nil {
		opts.Fillers = c.Generator.Fillers
	}
	return opts
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	opts := c.GeneratorOptions()

	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Wordlists: %s (sample %d lines)\n", c.Wordlists.Dir, c.Wordlists.SampleLines)
	summary += fmt.Sprintf("Generator: min length %d, %d separators, %d fillers, filter network name: %t",
		opts.MinLength, len(opts.Separators), len(opts.Fillers), opts.FilterNetworkName)

	return summary
}
