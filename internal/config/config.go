// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Browser   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	Network   NetworkConfig   `mapstructure:"network" yaml:"network"`
	Detection DetectionConfig `mapstructure:"detection" yaml:"detection"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Engage    EngageConfig    `mapstructure:"engage" yaml:"engage"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the shared headless browser process.
type BrowserConfig struct {
	Headless       bool     `mapstructure:"headless" yaml:"headless"`
	Args           []string `mapstructure:"args" yaml:"args"`
	UserAgent      string   `mapstructure:"user_agent" yaml:"user_agent"`
	Locale         string   `mapstructure:"locale" yaml:"locale"`
	Timezone       string   `mapstructure:"timezone" yaml:"timezone"`
	ViewportWidth  int      `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int      `mapstructure:"viewport_height" yaml:"viewport_height"`
}

// NetworkConfig tunes navigation behavior.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
}

// DetectionConfig controls the session discovery and validation pipeline.
type DetectionConfig struct {
	// Timeout bounds each navigation/probe cycle within a strategy.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// MaxRetries is the number of extra navigation attempts a cycle gets after
	// a transient failure.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	// OverallBudget bounds the whole discovery run. Zero means unbounded.
	OverallBudget time.Duration `mapstructure:"overall_budget" yaml:"overall_budget"`
	// NegativeSignalTimeout / PositiveSignalTimeout bound individual
	// visibility probes. Negative signals are checked first and faster.
	NegativeSignalTimeout time.Duration `mapstructure:"negative_signal_timeout" yaml:"negative_signal_timeout"`
	PositiveSignalTimeout time.Duration `mapstructure:"positive_signal_timeout" yaml:"positive_signal_timeout"`
	// CookieFiles are on-disk credential files scanned by the first strategy.
	CookieFiles []string `mapstructure:"cookie_files" yaml:"cookie_files"`
	// Domains are the target site aliases scanned for ambient auth cookies.
	Domains []string `mapstructure:"domains" yaml:"domains"`
	// AuthSurfaces are URLs that redirect to a login flow when logged out.
	AuthSurfaces []string `mapstructure:"auth_surfaces" yaml:"auth_surfaces"`
}

// StoreConfig locates the persisted multi-account configuration.
type StoreConfig struct {
	Path       string `mapstructure:"path" yaml:"path"`
	BackupPath string `mapstructure:"backup_path" yaml:"backup_path"`
}

// EngageConfig tunes the batch engagement driver.
type EngageConfig struct {
	// ActionsPerMinute caps the engagement rate across all accounts.
	ActionsPerMinute int           `mapstructure:"actions_per_minute" yaml:"actions_per_minute"`
	ActionTimeout    time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	// Concurrency bounds how many accounts act in parallel.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "roost")
	v.SetDefault("logger.log_file", "roost.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36")
	v.SetDefault("browser.locale", "pt-BR")
	v.SetDefault("browser.timezone", "America/Sao_Paulo")
	v.SetDefault("browser.viewport_width", 1920)
	v.SetDefault("browser.viewport_height", 1080)

	// -- Network --
	v.SetDefault("network.navigation_timeout", "15s")
	v.SetDefault("network.post_load_wait", "2s")

	// -- Detection --
	v.SetDefault("detection.timeout", "15s")
	v.SetDefault("detection.max_retries", 3)
	v.SetDefault("detection.overall_budget", "5m")
	v.SetDefault("detection.negative_signal_timeout", "1s")
	v.SetDefault("detection.positive_signal_timeout", "2500ms")
	v.SetDefault("detection.cookie_files", []string{
		"twitter-cookies-multi.json",
		"twitter-cookies.json",
	})
	v.SetDefault("detection.domains", []string{
		"https://twitter.com",
		"https://x.com",
	})
	v.SetDefault("detection.auth_surfaces", []string{
		"https://twitter.com/home",
		"https://twitter.com/notifications",
		"https://twitter.com/messages",
		"https://twitter.com/settings/profile",
	})

	// -- Store --
	v.SetDefault("store.path", "twitter-cookies-multi.json")
	v.SetDefault("store.backup_path", "twitter-cookies-multi.backup.json")

	// -- Engage --
	v.SetDefault("engage.actions_per_minute", 30)
	v.SetDefault("engage.action_timeout", "30s")
	v.SetDefault("engage.concurrency", 2)
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with pure defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a validated configuration from a viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.normalizePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// normalizePaths expands a leading ~ in user-supplied file paths.
func (c *Config) normalizePaths() error {
	var err error
	if c.Store.Path, err = homedir.Expand(c.Store.Path); err != nil {
		return fmt.Errorf("invalid store.path: %w", err)
	}
	if c.Store.BackupPath, err = homedir.Expand(c.Store.BackupPath); err != nil {
		return fmt.Errorf("invalid store.backup_path: %w", err)
	}
	for i, f := range c.Detection.CookieFiles {
		if c.Detection.CookieFiles[i], err = homedir.Expand(f); err != nil {
			return fmt.Errorf("invalid detection.cookie_files entry %q: %w", f, err)
		}
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Detection.Timeout <= 0 {
		return fmt.Errorf("detection.timeout must be a positive duration")
	}
	if c.Detection.MaxRetries < 0 {
		return fmt.Errorf("detection.max_retries must not be negative")
	}
	if c.Detection.NegativeSignalTimeout <= 0 || c.Detection.PositiveSignalTimeout <= 0 {
		return fmt.Errorf("detection signal timeouts must be positive durations")
	}
	if len(c.Detection.Domains) == 0 {
		return fmt.Errorf("detection.domains must list at least one target domain")
	}
	if c.Store.Path == "" || c.Store.BackupPath == "" {
		return fmt.Errorf("store.path and store.backup_path are required")
	}
	if c.Store.Path == c.Store.BackupPath {
		return fmt.Errorf("store.backup_path must differ from store.path")
	}
	if c.Engage.ActionsPerMinute <= 0 {
		return fmt.Errorf("engage.actions_per_minute must be a positive integer")
	}
	if c.Engage.Concurrency <= 0 {
		return fmt.Errorf("engage.concurrency must be a positive integer")
	}
	return nil
}
