package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables overriding file values. A double
// underscore separates nested keys: HIVE_RUN__STEPS=500 sets run.steps.
const EnvPrefix = "HIVE_"

// Config is the experiment description. Environment, Agent and Loggers hold
// raw fragments resolved later by the registry.
type Config struct {
	Run         RunConfig      `json:"run"`
	Environment map[string]any `json:"environment"`
	Agent       map[string]any `json:"agent"`
	Loggers     any            `json:"loggers"`
	Logging     LoggingConfig  `json:"logging"`
	Metrics     MetricsConfig  `json:"metrics"`
	Sentry      SentryConfig   `json:"sentry"`
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return TOML(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// Load reads the file at path, applies HIVE_ environment overrides, fills
// defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Run.SetDefaults()
	c.Logging.SetDefaults()
	c.Metrics.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Run.Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if len(c.Environment) == 0 {
		return fmt.Errorf("environment: fragment is required")
	}
	if len(c.Agent) == 0 {
		return fmt.Errorf("agent: fragment is required")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}

// RunConfig bounds the rollout loop.
type RunConfig struct {
	Name     string `json:"name"`
	Steps    int    `json:"steps"`
	Episodes int    `json:"episodes"`
	Seed     int64  `json:"seed"`
}

func (c *RunConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "hive"
	}
	if c.Steps == 0 {
		c.Steps = 1000
	}
}

func (c RunConfig) Validate() error {
	if c.Steps < 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.Episodes < 0 {
		return fmt.Errorf("episodes must not be negative, got %d", c.Episodes)
	}
	return nil
}
