// Package config loads nestframe configuration from file, environment
// variables, and CLI flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Default configuration values.
const (
	DefaultDatabase  = ":memory:"
	DefaultStateFile = ".nestframe/history.db"

	// envPrefix transforms NESTFRAME_MAX_DEPTH -> max_depth.
	envPrefix = "NESTFRAME_"
)

// TableConfig declares one table to register at startup. Exactly one of
// Table (an existing engine table) or CSV (a file to load first) must be set.
type TableConfig struct {
	Name      string `koanf:"name"`
	Table     string `koanf:"table"`
	CSV       string `koanf:"csv"`
	Qualifier string `koanf:"qualifier"`
}

// Config holds all nestframe configuration options.
type Config struct {
	Database  string        `koanf:"database"`
	StatePath string        `koanf:"state_path"`
	Verbose   bool          `koanf:"verbose"`
	MaxDepth  int           `koanf:"max_depth"`
	Tables    []TableConfig `koanf:"tables"`
}

// findConfigFile finds the config file to use.
// Priority: explicit path > nestframe.yaml > nestframe.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"nestframe.yaml", "nestframe.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// A nil flag set skips the flag layer.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database":   DefaultDatabase,
		"state_path": DefaultStateFile,
		"verbose":    false,
		"max_depth":  0,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables (NESTFRAME_ prefix)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, highest priority. Only explicitly set flags override.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// The CLI uses --state for brevity; the config key is state_path.
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Tables))
	for i, t := range c.Tables {
		if t.Name == "" {
			return fmt.Errorf("tables[%d]: name is required", i)
		}
		if _, ok := seen[t.Name]; ok {
			return fmt.Errorf("tables[%d]: duplicate table name %q", i, t.Name)
		}
		seen[t.Name] = struct{}{}

		if t.Table != "" && t.CSV != "" {
			return fmt.Errorf("table %q: table and csv are mutually exclusive", t.Name)
		}
		if t.Table == "" && t.CSV == "" {
			return fmt.Errorf("table %q: one of table or csv is required", t.Name)
		}
	}
	return nil
}
