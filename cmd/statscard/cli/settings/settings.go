// Package settings provides configuration loading for statscard.
// Settings come from .statscard/settings.json with environment variable
// overrides, so the tool can run unattended in CI with only env vars set.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// SettingsDir is the directory holding statscard configuration.
	SettingsDir = ".statscard"
	// SettingsFile is the path to the statscard settings file.
	SettingsFile = ".statscard/settings.json"

	// EnvPrefix is the prefix for statscard environment variables.
	EnvPrefix = "STATSCARD"
)

// DefaultCacheDir is where ledger and archive files live when not configured.
const DefaultCacheDir = "cache"

// Settings represents the .statscard/settings.json configuration.
type Settings struct {
	// Account is the GitHub login whose statistics are generated.
	Account string `json:"account" mapstructure:"account"`

	// Token is the GitHub access token. Usually supplied via
	// STATSCARD_TOKEN (or the legacy ACCESS_TOKEN) rather than the file.
	Token string `json:"token,omitempty" mapstructure:"token"`

	// APIURL overrides the GraphQL endpoint, for GitHub Enterprise
	// hosts. Empty means api.github.com.
	APIURL string `json:"api_url,omitempty" mapstructure:"api_url"`

	// CacheDir holds the per-account ledger and the frozen archive
	// snapshot. Defaults to "cache".
	CacheDir string `json:"cache_dir,omitempty" mapstructure:"cache_dir"`

	// Templates are the SVG stat-card files updated in place.
	Templates []string `json:"templates,omitempty" mapstructure:"templates"`

	// Birthday, as YYYY-MM-DD, feeds the rendered age line. Empty
	// disables the age line.
	Birthday string `json:"birthday,omitempty" mapstructure:"birthday"`

	// IncludeArchive folds cache/repository_archive.txt into the
	// totals, for accounts whose history predates the ledger.
	IncludeArchive bool `json:"include_archive,omitempty" mapstructure:"include_archive"`

	// LogLevel sets logging verbosity (debug, info, warn, error).
	// Can be overridden by STATSCARD_LOG_LEVEL. Defaults to "info".
	LogLevel string `json:"log_level,omitempty" mapstructure:"log_level"`
}

// Load reads settings from .statscard/settings.json relative to the
// current directory, then applies environment overrides. A missing file
// is not an error; env-only configuration is the common CI setup.
func Load() (*Settings, error) {
	return LoadFrom(".")
}

// LoadFrom reads settings rooted at dir. Split out from Load so tests
// and callers with an explicit working directory avoid chdir games.
func LoadFrom(dir string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, SettingsFile))
	v.SetConfigType("json")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Legacy env names kept for compatibility with existing workflows.
	if err := v.BindEnv("account", "STATSCARD_ACCOUNT", "USER_NAME"); err != nil {
		return nil, fmt.Errorf("binding account env: %w", err)
	}
	if err := v.BindEnv("token", "STATSCARD_TOKEN", "ACCESS_TOKEN"); err != nil {
		return nil, fmt.Errorf("binding token env: %w", err)
	}

	v.SetDefault("cache_dir", DefaultCacheDir)
	v.SetDefault("templates", []string{"dark_mode.svg", "light_mode.svg"})
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(v.ConfigFileUsed()); statErr == nil {
			// File exists but didn't parse; surface that.
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
		// File doesn't exist, continue with env and defaults.
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	return &s, nil
}

// Save writes settings to .statscard/settings.json under dir, creating
// the directory if needed. The token is never written to disk.
func Save(dir string, s *Settings) error {
	onDisk := *s
	onDisk.Token = ""

	data, err := json.MarshalIndent(&onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	data = append(data, '\n')

	settingsPath := filepath.Join(dir, SettingsFile)
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(settingsPath, data, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}

	return nil
}

// Validate checks that the settings can drive a generation run.
func (s *Settings) Validate() error {
	if s.Account == "" {
		return fmt.Errorf("no account configured: set STATSCARD_ACCOUNT or run 'statscard setup'")
	}
	if s.Token == "" {
		return fmt.Errorf("no access token configured: set STATSCARD_TOKEN")
	}
	return nil
}

// BirthdayTime parses the configured birthday. Returns ok=false when no
// birthday is configured.
func (s *Settings) BirthdayTime() (time.Time, bool, error) {
	if s.Birthday == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse("2006-01-02", s.Birthday)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing birthday %q: %w", s.Birthday, err)
	}
	return t, true, nil
}
