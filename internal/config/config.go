// Package config loads flaggraph settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the CLI and HTTP server read.
//
// Zero values in the file keep the defaults from Default().
type Config struct {
	// Database is the SQLite file path. ":memory:" gives a throwaway store.
	Database string `yaml:"database"`

	// Listen is the HTTP listen address for serve.
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`

	// DefaultSystemActor is recorded on creations without an actor.
	DefaultSystemActor string `yaml:"default_system_actor"`

	// DefaultUserActor is recorded on toggles without an actor.
	DefaultUserActor string `yaml:"default_user_actor"`

	// MutationRateLimit caps create/toggle requests per second over HTTP.
	// 0 disables the limit.
	MutationRateLimit float64 `yaml:"mutation_rate_limit"`

	// MutationBurst is the limiter's burst size.
	MutationBurst int `yaml:"mutation_burst"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database:           "flaggraph.db",
		Listen:             ":8080",
		LogLevel:           "info",
		LogFormat:          "text",
		DefaultSystemActor: "system",
		DefaultUserActor:   "user",
		MutationRateLimit:  0,
		MutationBurst:      10,
	}
}

// Load reads the YAML file at path over the defaults.
//
// An empty path returns the defaults. Unknown keys are an error so typos do
// not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Database == "" {
		errs = append(errs, errors.New("database must not be empty"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.MutationRateLimit < 0 {
		errs = append(errs, fmt.Errorf("mutation_rate_limit must be >= 0, got %v", c.MutationRateLimit))
	}
	if c.MutationRateLimit > 0 && c.MutationBurst < 1 {
		errs = append(errs, fmt.Errorf("mutation_burst must be >= 1 when rate limiting, got %d", c.MutationBurst))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a log_level string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
}
