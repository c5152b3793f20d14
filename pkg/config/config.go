// Package config loads provider, consumer and monitor settings
// from YAML with .env and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"digital.vasic.outcomes/pkg/capability"
	"digital.vasic.outcomes/pkg/launch"
	"digital.vasic.outcomes/pkg/logging"
)

var validate = validator.New()

// Config is the on-disk configuration.
type Config struct {
	Consumer ConsumerConfig `yaml:"consumer"`
	Outcome  OutcomeConfig  `yaml:"outcome"`
	// LaunchParams are the parameters the platform sent at
	// launch, ext_ and custom_ prefixes included.
	LaunchParams map[string]string `yaml:"launch_params"`
	Timeout      time.Duration     `yaml:"timeout" validate:"gte=0"`
	Logging      LoggingConfig     `yaml:"logging"`
	Monitor      MonitorConfig     `yaml:"monitor"`
}

// ConsumerConfig holds the OAuth credentials shared with the
// platform.
type ConsumerConfig struct {
	Key    string `yaml:"key" validate:"required"`
	Secret string `yaml:"secret" validate:"required"`
}

// OutcomeConfig names the result being reported. Values here win
// over the same keys in LaunchParams.
type OutcomeConfig struct {
	ServiceURL    string   `yaml:"service_url" validate:"omitempty,url"`
	SourcedID     string   `yaml:"sourcedid"`
	AcceptedTypes []string `yaml:"accepted_types"`
}

type LoggingConfig struct {
	Dir     string `yaml:"dir"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Verbose bool   `yaml:"verbose"`
}

type MonitorConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Default returns a configuration with every optional value set.
func Default() *Config {
	return &Config{
		LaunchParams: map[string]string{},
		Timeout:      30 * time.Second,
		Logging:      LoggingConfig{Level: "info"},
		Monitor:      MonitorConfig{Addr: ":8090"},
	}
}

// Load reads a YAML file over the defaults. An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.LaunchParams == nil {
		cfg.LaunchParams = map[string]string{}
	}
	return cfg, nil
}

// ApplyEnv overlays OUTCOMES_* values from l.
func (c *Config) ApplyEnv(l Loader) error {
	set := func(dst *string, key string) {
		if v := l.Get(key); v != "" {
			*dst = v
		}
	}
	set(&c.Consumer.Key, EnvConsumerKey)
	set(&c.Consumer.Secret, EnvConsumerSecret)
	set(&c.Outcome.ServiceURL, EnvServiceURL)
	set(&c.Outcome.SourcedID, EnvSourcedID)
	set(&c.Logging.Dir, EnvLogDir)
	set(&c.Logging.Level, EnvLogLevel)
	set(&c.Monitor.Addr, EnvMonitorAddr)

	if v := l.Get(EnvAcceptedTypes); v != "" {
		c.Outcome.AcceptedTypes = capability.Decode(v)
	}
	if v := l.Get(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// LoadAll reads path, applies envFile (when it exists) and the
// process environment, then validates.
func LoadAll(path, envFile string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	loader := NewEnvLoader()
	if envFile != "" {
		if _, statErr := os.Stat(envFile); statErr == nil {
			if err := loader.Load(envFile); err != nil {
				return nil, err
			}
		}
	}
	if err := cfg.ApplyEnv(loader); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Launch builds launch parameters from LaunchParams with the
// outcome service fields and advertisement applied on top.
func (c *Config) Launch() *launch.Params {
	p := launch.FromMap(c.LaunchParams)
	if c.Outcome.ServiceURL != "" {
		p.Set(launch.ParamOutcomeServiceURL, c.Outcome.ServiceURL)
	}
	if c.Outcome.SourcedID != "" {
		p.Set(launch.ParamResultSourcedID, c.Outcome.SourcedID)
	}
	if c.Outcome.AcceptedTypes != nil {
		capability.NewAdvertiser(p).SetAcceptedTypes(c.Outcome.AcceptedTypes...)
	}
	return p
}

// LogLevel returns the configured level, Debug when verbose.
func (c *Config) LogLevel() logging.LogLevel {
	if c.Logging.Verbose {
		return logging.LevelDebug
	}
	return logging.ParseLevel(c.Logging.Level)
}
