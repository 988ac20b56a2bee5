// Package config loads monolink's runtime configuration: built-in
// defaults, then a workspace-level monolink.toml or monolink.yaml,
// then MONOLINK_* environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/monolink/pkg/errors"
)

// Strategy names accepted by link.strategy.
const (
	StrategyNested    = "nested"
	StrategyFlattened = "flattened"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// MONOLINK_LINK_STRATEGY=flattened.
const EnvPrefix = "MONOLINK_"

// Config is the effective runtime configuration.
type Config struct {
	Link struct {
		Strategy    string `koanf:"strategy" toml:"strategy"`
		Concurrency int    `koanf:"concurrency" toml:"concurrency"`
	} `koanf:"link" toml:"link"`

	Workspace struct {
		CommonFolder string `koanf:"commonFolder" toml:"commonFolder"`
	} `koanf:"workspace" toml:"workspace"`
}

// Load builds the effective configuration for a workspace. Layering,
// lowest to highest: embedded defaults, monolink.toml or monolink.yaml
// at the workspace root, MONOLINK_* environment variables.
func Load(workspaceRoot string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default config")
	}

	for _, candidate := range []struct {
		name   string
		parser koanf.Parser
	}{
		{"monolink.toml", toml.Parser()},
		{"monolink.yaml", yaml.Parser()},
	} {
		path := filepath.Join(workspaceRoot, candidate.name)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), candidate.parser); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
			}
			break
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
		// Only section-scoped keys belong to the config tree. Variables
		// like MONOLINK_WORKSPACE and MONOLINK_COMMON_DIR are owned by
		// pkg/paths and must not collide with the workspace section.
		section, _, found := strings.Cut(key, ".")
		if !found || (section != "link" && section != "workspace") {
			return ""
		}
		return key
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Link.Strategy {
	case StrategyNested, StrategyFlattened:
	default:
		return errors.Newf(errors.ErrConfigValid,
			"link.strategy must be %q or %q, got %q", StrategyNested, StrategyFlattened, c.Link.Strategy)
	}
	if c.Link.Concurrency < 1 {
		return errors.Newf(errors.ErrConfigValid,
			"link.concurrency must be at least 1, got %d", c.Link.Concurrency)
	}
	return nil
}

// Marshal renders the configuration as TOML, used by the init command
// to write a starter workspace config.
func (c *Config) Marshal() ([]byte, error) {
	data, err := gotoml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to marshal config")
	}
	return data, nil
}
