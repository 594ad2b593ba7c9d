package config

import (
	"fmt"
	"os"
	"time"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/redaction"
)

// Environment variables overriding key material, so secrets stay out of
// config files.
const (
	EnvTokenKey = "NVISY_TOKEN_KEY"
	EnvHashKey  = "NVISY_HASH_KEY"
)

// Config is the file-level configuration of a redaction run.
type Config struct {
	Service       string  `yaml:"service" json:"service"`
	Workers       int     `yaml:"workers" json:"workers"`
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence"`
	UnitTimeout   string  `yaml:"unit_timeout" json:"unit_timeout"`
	Preview       bool    `yaml:"preview" json:"preview"`

	// TokenKey and HashKey may be set here for testing; the NVISY_TOKEN_KEY
	// and NVISY_HASH_KEY environment variables take precedence.
	TokenKey string `yaml:"token_key" json:"token_key"`
	HashKey  string `yaml:"hash_key" json:"hash_key"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Default applies to every category without a specific rule.
	Default *RuleConfig `yaml:"default" json:"default"`

	// Rules maps category identifiers (leaf or group) to strategies.
	Rules map[string]RuleConfig `yaml:"rules" json:"rules"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// RuleConfig is the file form of one redaction rule.
type RuleConfig struct {
	Strategy          string  `yaml:"strategy" json:"strategy"`
	MaskChar          string  `yaml:"mask_char" json:"mask_char"`
	Placeholder       bool    `yaml:"placeholder" json:"placeholder"`
	KeepPrefix        int     `yaml:"keep_prefix" json:"keep_prefix"`
	KeepSuffix        int     `yaml:"keep_suffix" json:"keep_suffix"`
	MinMaskedFraction float64 `yaml:"min_masked_fraction" json:"min_masked_fraction"`
}

// Load reads the config file, applies environment overrides, and fills in
// defaults. An empty path yields the default configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Service: "nvisy-core",
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
	if err := LoadFile(path, cfg); err != nil {
		return nil, err
	}
	if v := os.Getenv(EnvTokenKey); v != "" {
		cfg.TokenKey = v
	}
	if v := os.Getenv(EnvHashKey); v != "" {
		cfg.HashKey = v
	}
	return cfg, nil
}

// Timeout parses the unit timeout. Empty means no limit.
func (c *Config) Timeout() (time.Duration, error) {
	if c.UnitTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.UnitTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid unit_timeout %q: %w", c.UnitTimeout, err)
	}
	return d, nil
}

// Policy builds the redaction policy described by the rules section.
func (c *Config) Policy() (*redaction.Policy, error) {
	policy := redaction.NewPolicy()
	if c.Default != nil {
		rule, err := c.Default.rule()
		if err != nil {
			return nil, fmt.Errorf("default rule: %w", err)
		}
		policy.SetDefault(rule)
	}
	for cat, rc := range c.Rules {
		rule, err := rc.rule()
		if err != nil {
			return nil, fmt.Errorf("rule for %s: %w", cat, err)
		}
		policy.Set(category.Category(cat), rule)
	}
	return policy, nil
}

func (rc RuleConfig) rule() (redaction.Rule, error) {
	var kind redaction.StrategyKind
	switch rc.Strategy {
	case "", string(redaction.StrategyMask):
		kind = redaction.StrategyMask
	case string(redaction.StrategyPartialMask):
		kind = redaction.StrategyPartialMask
	case string(redaction.StrategyTokenize):
		kind = redaction.StrategyTokenize
	case string(redaction.StrategyHash):
		kind = redaction.StrategyHash
	case string(redaction.StrategyRemove):
		kind = redaction.StrategyRemove
	default:
		return redaction.Rule{}, fmt.Errorf("unknown strategy %q", rc.Strategy)
	}

	var mask rune
	if rc.MaskChar != "" {
		runes := []rune(rc.MaskChar)
		if len(runes) != 1 {
			return redaction.Rule{}, fmt.Errorf("mask_char must be one character, got %q", rc.MaskChar)
		}
		mask = runes[0]
	}

	return redaction.Rule{
		Strategy:          kind,
		MaskChar:          mask,
		Placeholder:       rc.Placeholder,
		KeepPrefix:        rc.KeepPrefix,
		KeepSuffix:        rc.KeepSuffix,
		MinMaskedFraction: rc.MinMaskedFraction,
	}, nil
}
