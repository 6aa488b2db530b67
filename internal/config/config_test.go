// File: internal/config/config_test.go
package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 15*time.Second, cfg.Detection.Timeout)
	assert.Equal(t, 3, cfg.Detection.MaxRetries)
	assert.Equal(t, time.Second, cfg.Detection.NegativeSignalTimeout)
	assert.Equal(t, 2500*time.Millisecond, cfg.Detection.PositiveSignalTimeout)
	assert.Equal(t, "twitter-cookies-multi.json", cfg.Store.Path)
	assert.Equal(t, "twitter-cookies-multi.backup.json", cfg.Store.BackupPath)
	assert.Len(t, cfg.Detection.Domains, 2)
	assert.NotEmpty(t, cfg.Detection.AuthSurfaces)
	assert.Equal(t, 30, cfg.Engage.ActionsPerMinute)

	assert.NoError(t, cfg.Validate(), "defaults must always validate")
}

func TestNewConfigFromViper_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("detection.timeout", "30s")
	v.Set("browser.headless", false)
	v.Set("detection.cookie_files", []string{"custom.json"})

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Detection.Timeout)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"custom.json"}, cfg.Detection.CookieFiles)
}

func TestNormalizePaths_ExpandsHome(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Path = "~/accounts.json"
	cfg.Store.BackupPath = "~/accounts.backup.json"
	cfg.Detection.CookieFiles = []string{"~/cookies.json"}

	require.NoError(t, cfg.normalizePaths())

	assert.False(t, strings.HasPrefix(cfg.Store.Path, "~"))
	assert.False(t, strings.HasPrefix(cfg.Detection.CookieFiles[0], "~"))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero detection timeout",
			mutate:  func(c *Config) { c.Detection.Timeout = 0 },
			wantErr: "detection.timeout",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Detection.MaxRetries = -1 },
			wantErr: "max_retries",
		},
		{
			name:    "zero signal timeout",
			mutate:  func(c *Config) { c.Detection.PositiveSignalTimeout = 0 },
			wantErr: "signal timeouts",
		},
		{
			name:    "no domains",
			mutate:  func(c *Config) { c.Detection.Domains = nil },
			wantErr: "detection.domains",
		},
		{
			name:    "missing store path",
			mutate:  func(c *Config) { c.Store.Path = "" },
			wantErr: "store.path",
		},
		{
			name:    "backup path collides with primary",
			mutate:  func(c *Config) { c.Store.BackupPath = c.Store.Path },
			wantErr: "must differ",
		},
		{
			name:    "zero engagement rate",
			mutate:  func(c *Config) { c.Engage.ActionsPerMinute = 0 },
			wantErr: "actions_per_minute",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Engage.Concurrency = 0 },
			wantErr: "concurrency",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
