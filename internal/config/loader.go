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
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FOODRANK_CONFIG is set
//  3. env (prefix FOODRANK_)
//  4. legacy env surface: DYNAMODB_TABLE, AWS_DEFAULT_REGION
//
// AWS credentials are never part of Config; the SDK default chain reads
// AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY on its own.
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FOODRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: FOODRANK_TABLE, FOODRANK_TOP_K, ...
	// Map env keys like FOODRANK_TOP_K -> top_k (flat keys).
	envProvider := env.Provider("FOODRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "foodrank_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// The documented scheduler surface uses unprefixed variables; they win
	// over everything else.
	if table := os.Getenv("DYNAMODB_TABLE"); table != "" {
		cfg.Table = table
	}
	if region := os.Getenv("AWS_DEFAULT_REGION"); region != "" {
		cfg.Region = region
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Table == "":
		return fmt.Errorf("%w: table must not be empty", ErrInvalidConfig)
	case c.Region == "":
		return fmt.Errorf("%w: region must not be empty", ErrInvalidConfig)
	case c.TopK <= 0:
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidConfig)
	case c.ScanPageSize <= 0:
		return fmt.Errorf("%w: scan_page_size must be positive", ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	case c.OutputDir == "" || c.JSONFile == "" || c.ChartFile == "":
		return fmt.Errorf("%w: artifact paths must not be empty", ErrInvalidConfig)
	}
	return nil
}
