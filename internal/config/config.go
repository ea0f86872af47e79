// Package config builds the explicit runtime configuration for stevedore.
//
// The configuration struct is constructed once at startup and passed into
// every component; no component reads environment variables or other
// ambient process state directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RuntimeConfig holds container-runtime invocation settings.
type RuntimeConfig struct {
	// Binary is the container runtime executable, normally "docker".
	Binary string `mapstructure:"binary"`

	// CommandTimeout bounds every single runtime invocation, in seconds.
	CommandTimeout int `mapstructure:"command_timeout"`

	// StopGraceSeconds is the grace period a graceful stop allows before
	// the runtime escalates to a kill.
	StopGraceSeconds int `mapstructure:"stop_grace_seconds"`
}

// StateConfig holds state-document settings.
type StateConfig struct {
	// Path is the location of the persisted state document.
	Path string `mapstructure:"path"`

	// HistoryMax bounds the recently-touched-units list.
	HistoryMax int `mapstructure:"history_max"`
}

// ReadinessConfig holds readiness-probe settings.
type ReadinessConfig struct {
	// DefaultTimeout is the process-wide readiness timeout in seconds,
	// used when neither the manifest nor the caller supplies one.
	DefaultTimeout int `mapstructure:"default_timeout"`

	// PollInterval is the probe polling interval in seconds.
	PollInterval int `mapstructure:"poll_interval"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the top-level configuration struct.
type Config struct {
	Runtime   RuntimeConfig   `mapstructure:"runtime"`
	State     StateConfig     `mapstructure:"state"`
	Readiness ReadinessConfig `mapstructure:"readiness"`
	Logging   LoggingConfig   `mapstructure:"log"`
}

// CommandTimeoutDuration returns the per-invocation runtime timeout.
func (c *Config) CommandTimeoutDuration() time.Duration {
	return time.Duration(c.Runtime.CommandTimeout) * time.Second
}

// PollIntervalDuration returns the readiness probe polling interval.
func (c *Config) PollIntervalDuration() time.Duration {
	return time.Duration(c.Readiness.PollInterval) * time.Second
}

// Load reads the configuration: defaults first, then an optional
// stevedore.yaml in the working directory or ~/.config/stevedore, then
// STEVEDORE_* environment variables. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for each sub-configuration.
	v.SetDefault("runtime.binary", "docker")
	v.SetDefault("runtime.command_timeout", 120)
	v.SetDefault("runtime.stop_grace_seconds", 10)
	v.SetDefault("state.path", defaultStatePath())
	v.SetDefault("state.history_max", 10)
	v.SetDefault("readiness.default_timeout", 60)
	v.SetDefault("readiness.poll_interval", 1)
	v.SetDefault("log.level", "info")

	v.SetConfigName("stevedore")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "stevedore"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Not found: continue with defaults and env vars.
	}

	v.SetEnvPrefix("stevedore")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, nil
}

// defaultStatePath places the state document under the user's home
// directory, falling back to the working directory when home is unknown.
func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stevedore/state.json"
	}
	return filepath.Join(home, ".stevedore", "state.json")
}
