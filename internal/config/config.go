// Package config loads optimizer settings from defaults, a .env file, a
// JSON file and ASTOPT_* environment variables, in that order.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/joho/godotenv"

	errs "github.com/orizon-lang/astopt/internal/errors"
	"github.com/orizon-lang/astopt/internal/optimize"
)

// Environment variables read by Load.
const (
	EnvEnabled        = "ASTOPT_ENABLED"
	EnvDebug          = "ASTOPT_DEBUG"
	EnvHostVersion    = "ASTOPT_HOST_VERSION"
	EnvLogFormat      = "ASTOPT_LOG_FORMAT"
	EnvDisabledPasses = "ASTOPT_DISABLED_PASSES"
)

// Config holds the optimizer settings a host can change.
type Config struct {
	Enabled        bool     `json:"enabled"`
	Debug          bool     `json:"debug"`
	HostVersion    string   `json:"host_version,omitempty"`
	LogFormat      string   `json:"log_format"`
	DisabledPasses []string `json:"disabled_passes,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{Enabled: true, LogFormat: "text"}
}

// Load builds the configuration with .env in the working directory.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, ".env")
}

// LoadWithEnv builds the configuration. Variables from envFile never
// replace ones already set in the process. A missing config file or env
// file is not an error; an empty path skips the JSON layer.
func LoadWithEnv(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.InvalidConfig(envFile, "cannot load", err)
		}
	}

	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return errs.InvalidConfig(path, "malformed JSON", err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	if v, ok := lookup(EnvEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.InvalidConfig(EnvEnabled, "expected a boolean", err)
		}
		c.Enabled = b
	}
	if v, ok := lookup(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.InvalidConfig(EnvDebug, "expected a boolean", err)
		}
		c.Debug = b
	}
	if v, ok := lookup(EnvHostVersion); ok {
		c.HostVersion = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvDisabledPasses); ok {
		c.DisabledPasses = nil
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				c.DisabledPasses = append(c.DisabledPasses, id)
			}
		}
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.HostVersion != "" {
		if _, err := semver.NewVersion(c.HostVersion); err != nil {
			return errs.InvalidConfig("host_version", fmt.Sprintf("%q is not a semantic version", c.HostVersion), err)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errs.InvalidConfig("log_format", fmt.Sprintf("%q is not text or json", c.LogFormat), nil)
	}

	known := make(map[string]bool)
	for _, p := range optimize.DefaultPasses() {
		known[p.Descriptor().ID] = true
	}
	for _, id := range c.DisabledPasses {
		if !known[id] {
			return errs.InvalidConfig("disabled_passes", fmt.Sprintf("unknown pass %q", id), nil)
		}
	}
	return nil
}

// Filter returns the pass filter described by the configuration. Call
// Validate first; an unparsable host version is ignored here.
func (c *Config) Filter() optimize.PassFilter {
	f := optimize.PassFilter{Disabled: make(map[string]bool, len(c.DisabledPasses))}
	for _, id := range c.DisabledPasses {
		f.Disabled[id] = true
	}
	if c.HostVersion != "" {
		if v, err := semver.NewVersion(c.HostVersion); err == nil {
			f.HostVersion = v
		}
	}
	return f
}

// Apply pushes the switches into toggles shared with a pipeline.
func (c *Config) Apply(t *optimize.Toggles) {
	t.SetEnabled(c.Enabled)
	t.SetDebug(c.Debug)
}
