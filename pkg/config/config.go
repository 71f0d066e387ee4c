package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxDepth = 10000

	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config tunes the derived-operation engine and its logging.
type Config struct {
	Chain     ChainConfig     `toml:"chain" yaml:"chain" envPrefix:"CHAIN_"`
	Enumerate EnumerateConfig `toml:"enumerate" yaml:"enumerate" envPrefix:"ENUMERATE_"`
	Logging   Logging         `toml:"logging" yaml:"logging" envPrefix:"LOG_"`
}

type ChainConfig struct {
	// MaxDepth bounds the nested chain walks a single entity may have in
	// flight, including walks started from accessor and method code, before
	// the walk is reported as cyclic.
	MaxDepth int `toml:"max_depth" yaml:"max_depth" env:"MAX_DEPTH"`
}

type EnumerateConfig struct {
	// Deduplicate drops keys already produced lower in the delegation chain.
	// When false, every hop contributes all of its enumerable keys.
	Deduplicate bool `toml:"deduplicate" yaml:"deduplicate" env:"DEDUPLICATE"`
}

type Logging struct {
	Level  string `toml:"level" yaml:"level" env:"LEVEL"`
	Format string `toml:"format" yaml:"format" env:"FORMAT"`
}

const EnvPrefix = "PROXY_HANDLERS_"

func Default() Config {
	return Config{
		Chain:     ChainConfig{MaxDepth: DefaultMaxDepth},
		Enumerate: EnumerateConfig{Deduplicate: true},
		Logging:   Logging{Level: "info", Format: FormatConsole},
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file over the defaults
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config load failed (%s): unsupported extension", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays PROXY_HANDLERS_* environment variables onto cfg,
// e.g. PROXY_HANDLERS_CHAIN_MAX_DEPTH or PROXY_HANDLERS_LOG_LEVEL.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return cfg.Validate()
}

func (c Config) Validate() error {
	if c.Chain.MaxDepth < 1 {
		return fmt.Errorf("config invalid: chain.max_depth must be positive, got %d", c.Chain.MaxDepth)
	}
	if _, ok := ParseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("config invalid: unknown logging.level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("config invalid: unknown logging.format %q", c.Logging.Format)
	}
	return nil
}

// ParseLevel normalizes a level name. The empty string means "info".
func ParseLevel(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return "info", true
	case "trace":
		return "trace", true
	case "debug":
		return "debug", true
	case "warn", "warning":
		return "warn", true
	case "error":
		return "error", true
	case "disabled", "off", "none":
		return "disabled", true
	default:
		return "", false
	}
}
