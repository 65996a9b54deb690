// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/joomcode/errorx"
	"github.com/spf13/viper"
)

var (
	ErrNamespace = errorx.NewNamespace("config")
	// NotFoundError is raised when the file passed to Initialize cannot be read.
	NotFoundError = ErrNamespace.NewType("not_found", errorx.NotFound())
)

// Config holds the global configuration for the application.
type Config struct {
	Log      logx.LoggingConfig `yaml:"log" json:"log"`
	Runner   RunnerConfig       `yaml:"runner" json:"runner"`
	Managers ManagersConfig     `yaml:"managers" json:"managers"`
	// ReportDir is where upgrade reports are saved. Reports are only printed when empty.
	ReportDir string `yaml:"reportDir" json:"reportDir"`
}

// RunnerConfig represents the `runner` section.
type RunnerConfig struct {
	SearchPath     string        `yaml:"searchPath" json:"searchPath"`
	DefaultTimeout time.Duration `yaml:"defaultTimeout" json:"defaultTimeout"`
}

// ManagersConfig represents the `managers` section.
type ManagersConfig struct {
	Enabled  []string      `yaml:"enabled" json:"enabled"`
	Enrich   bool          `yaml:"enrich" json:"enrich"`
	Npm      ManagerConfig `yaml:"npm" json:"npm"`
	Homebrew ManagerConfig `yaml:"homebrew" json:"homebrew"`
	Pip      ManagerConfig `yaml:"pip" json:"pip"`
	Apt      ManagerConfig `yaml:"apt" json:"apt"`
}

// ManagerConfig tunes a single package manager.
type ManagerConfig struct {
	Command        string        `yaml:"command" json:"command"`
	Interpreter    string        `yaml:"interpreter,omitempty" json:"interpreter,omitempty"`
	ProbeTimeout   time.Duration `yaml:"probeTimeout" json:"probeTimeout"`
	ListTimeout    time.Duration `yaml:"listTimeout" json:"listTimeout"`
	QueryTimeout   time.Duration `yaml:"queryTimeout" json:"queryTimeout"`
	UpdateTimeout  time.Duration `yaml:"updateTimeout" json:"updateTimeout"`
	FallbackPrefix string        `yaml:"fallbackPrefix" json:"fallbackPrefix"`
}

// Validate validates all configuration sections.
func (c Config) Validate() error {
	if err := c.Runner.Validate(); err != nil {
		return err
	}

	return c.Managers.Validate()
}

func (c RunnerConfig) Validate() error {
	if c.DefaultTimeout <= 0 {
		return errorx.IllegalArgument.New("runner.defaultTimeout must be positive, got %s", c.DefaultTimeout).
			WithProperty(errorx.PropertyPayload(), "runner.defaultTimeout")
	}

	if strings.TrimSpace(c.SearchPath) == "" {
		return errorx.IllegalArgument.New("runner.searchPath must not be empty").
			WithProperty(errorx.PropertyPayload(), "runner.searchPath")
	}

	for _, dir := range filepath.SplitList(c.SearchPath) {
		if !filepath.IsAbs(dir) {
			return errorx.IllegalArgument.New("runner.searchPath entry %q is not an absolute path", dir).
				WithProperty(errorx.PropertyPayload(), "runner.searchPath")
		}
	}

	return nil
}

func (c ManagersConfig) Validate() error {
	if len(c.Enabled) == 0 {
		return errorx.IllegalArgument.New("managers.enabled must list at least one package manager").
			WithProperty(errorx.PropertyPayload(), "managers.enabled")
	}

	enabled, err := models.ParseManagers(c.Enabled)
	if err != nil {
		return errorx.IllegalArgument.Wrap(err, "invalid managers.enabled").
			WithProperty(errorx.PropertyPayload(), "managers.enabled")
	}

	for _, m := range enabled {
		if err := c.For(m).Validate(m); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the settings of manager m.
func (c ManagerConfig) Validate(m models.Manager) error {
	key := "managers." + m.String()

	if m != models.ManagerApt && strings.TrimSpace(c.Command) == "" {
		return errorx.IllegalArgument.New("%s.command must not be empty", key).
			WithProperty(errorx.PropertyPayload(), key+".command")
	}

	timeouts := map[string]time.Duration{
		"probeTimeout":  c.ProbeTimeout,
		"listTimeout":   c.ListTimeout,
		"queryTimeout":  c.QueryTimeout,
		"updateTimeout": c.UpdateTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return errorx.IllegalArgument.New("%s.%s must be positive, got %s", key, name, d).
				WithProperty(errorx.PropertyPayload(), key+"."+name)
		}
	}

	return nil
}

// For returns the settings of manager m.
func (c ManagersConfig) For(m models.Manager) ManagerConfig {
	switch m {
	case models.ManagerNpm:
		return c.Npm
	case models.ManagerHomebrew:
		return c.Homebrew
	case models.ManagerPip:
		return c.Pip
	case models.ManagerApt:
		return c.Apt
	default:
		return ManagerConfig{}
	}
}

// EnabledManagers returns the configured managers in order, without duplicates.
func (c ManagersConfig) EnabledManagers() ([]models.Manager, error) {
	return models.ParseManagers(c.Enabled)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: logx.LoggingConfig{
			Level:          "Info",
			ConsoleLogging: true,
			FileLogging:    false,
		},
		Runner: RunnerConfig{
			SearchPath:     "/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin:/opt/homebrew/bin:/usr/local/opt/node@18/bin",
			DefaultTimeout: 30 * time.Second,
		},
		Managers: ManagersConfig{
			Enabled: []string{
				models.ManagerNpm.String(),
				models.ManagerHomebrew.String(),
				models.ManagerPip.String(),
			},
			Enrich: true,
			Npm: ManagerConfig{
				Command:        "npm",
				ProbeTimeout:   30 * time.Second,
				ListTimeout:    30 * time.Second,
				QueryTimeout:   30 * time.Second,
				UpdateTimeout:  600 * time.Second,
				FallbackPrefix: "/usr/local",
			},
			Homebrew: ManagerConfig{
				Command:        "brew",
				ProbeTimeout:   30 * time.Second,
				ListTimeout:    30 * time.Second,
				QueryTimeout:   30 * time.Second,
				UpdateTimeout:  180 * time.Second,
				FallbackPrefix: "/usr/local",
			},
			Pip: ManagerConfig{
				Command:        "pip3",
				Interpreter:    "python3",
				ProbeTimeout:   30 * time.Second,
				ListTimeout:    30 * time.Second,
				QueryTimeout:   15 * time.Second,
				UpdateTimeout:  180 * time.Second,
				FallbackPrefix: "/opt/anaconda3/lib/python3.13/site-packages",
			},
			Apt: ManagerConfig{
				ProbeTimeout:  30 * time.Second,
				ListTimeout:   60 * time.Second,
				QueryTimeout:  30 * time.Second,
				UpdateTimeout: 300 * time.Second,
			},
		},
	}
}

var globalConfig = Default()

func init() {
	// logging is usable before Initialize runs
	_ = logx.Initialize(globalConfig.Log)
}

// Initialize loads the configuration from path on top of the defaults. An empty path keeps the defaults.
// Values can be overridden with PKGVIEW_ prefixed environment variables, e.g. PKGVIEW_RUNNER_DEFAULTTIMEOUT.
func Initialize(path string) error {
	if path != "" {
		cfg := Default()
		viper.Reset()
		viper.SetConfigFile(path)
		viper.SetEnvPrefix("PKGVIEW")
		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		err := viper.ReadInConfig()
		if err != nil {
			return NotFoundError.Wrap(err, "failed to read config file: %s", path).
				WithProperty(errorx.PropertyPayload(), path)
		}

		if err := viper.Unmarshal(&cfg); err != nil {
			return errorx.IllegalFormat.Wrap(err, "failed to parse configuration").
				WithProperty(errorx.PropertyPayload(), path)
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		globalConfig = cfg
	}

	return nil
}

func Get() Config {
	return globalConfig
}

func Set(c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	globalConfig = *c
	return nil
}
