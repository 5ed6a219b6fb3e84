package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if DKPTALLY_CONFIG is set
//  3. env (prefix DKPTALLY_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("DKPTALLY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: DKPTALLY_BASE_DIR, DKPTALLY_LOG_LEVEL, ...
	// Map env keys like DKPTALLY_BASE_DIR -> base_dir (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("DKPTALLY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "dkptally_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("%w: base_dir must not be empty", ErrInvalidConfig)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("%w: timezone: %w", ErrInvalidConfig, err)
	}
	return &cfg, nil
}
