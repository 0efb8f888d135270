// Package config loads sitesctl.toml from the host root.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/kongondo/SitesManager-sub001/internal/i18n"
	"github.com/kongondo/SitesManager-sub001/internal/logging"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
)

// FileName is the config file looked up in the host root.
const FileName = "sitesctl.toml"

// Defaults applied before the file is decoded.
const (
	DefaultDatabase   = "site/assets/sitesctl.db"
	DefaultAdminTheme = "AdminThemeReno"
	DefaultLandingURL = "./"
	DefaultLogLevel   = "info"
)

// ErrConfigValidation wraps config validation failures, as opposed to TOML syntax
// or filesystem errors.
var ErrConfigValidation = errors.New(messages.ConfigErrValidation)

// Config is the decoded sitesctl.toml.
type Config struct {
	Host HostConfig `toml:"host"`
	UI   UIConfig   `toml:"ui"`
	Log  LogConfig  `toml:"log"`
}

// HostConfig locates the host store and shapes the records sitesctl writes.
type HostConfig struct {
	// Database is the sqlite file path, relative to the host root unless absolute.
	Database string `toml:"database"`
	// AdminTheme is hidden from the container pages' menu.
	AdminTheme string `toml:"admin_theme"`
	// LandingURL is the redirect target after install and cleanup.
	LandingURL string `toml:"landing_url"`
}

// UIConfig controls session message rendering.
type UIConfig struct {
	Language string `toml:"language"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Host: HostConfig{
			Database:   DefaultDatabase,
			AdminTheme: DefaultAdminTheme,
			LandingURL: DefaultLandingURL,
		},
		UI:  UIConfig{Language: i18n.DefaultLanguage},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// DefaultPath returns the config path inside root.
func DefaultPath(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads the config for root. An empty path selects DefaultPath(root); a
// missing default file yields Default(). An explicit path must exist.
func Load(root string, path string) (*Config, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New(messages.ConfigRootRequired)
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath(root)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			return &cfg, nil
		}
		return nil, fmt.Errorf(messages.ConfigReadFmt, path, err)
	}
	return Parse(data, path)
}

// Parse decodes data over the defaults, rejects unknown keys and validates.
// source is used in error messages.
func Parse(data []byte, source string) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf(messages.ConfigInvalidConfigFmt, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return nil, fmt.Errorf(messages.ConfigUnknownKeysFmt, ErrConfigValidation, source, err)
	}
	if err := cfg.Validate(source); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeStrict(data []byte) error {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&cfg)
}

// Validate checks required values and enumerations.
func (c Config) Validate(source string) error {
	fail := func(msg string) error {
		return fmt.Errorf(messages.ConfigValidationFmt, ErrConfigValidation, source, msg)
	}
	if strings.TrimSpace(c.Host.Database) == "" {
		return fail(messages.ConfigDatabaseRequired)
	}
	if strings.TrimSpace(c.Host.AdminTheme) == "" {
		return fail(messages.ConfigAdminThemeRequired)
	}
	if strings.TrimSpace(c.Host.LandingURL) == "" {
		return fail(messages.ConfigLandingURLRequired)
	}
	if !supportedLanguage(c.UI.Language) {
		return fail(fmt.Sprintf(messages.ConfigLanguageInvalidFmt, c.UI.Language, strings.Join(i18n.Supported(), ", ")))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fail(fmt.Sprintf(messages.ConfigLogLevelInvalidFmt, c.Log.Level))
	}
	return nil
}

func supportedLanguage(lang string) bool {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(lang)), "-")
	for _, tag := range i18n.Supported() {
		if base == tag {
			return true
		}
	}
	return false
}

// DatabasePath resolves Host.Database against root, expanding a leading ~.
func (c Config) DatabasePath(root string) (string, error) {
	path, err := homedir.Expand(c.Host.Database)
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExpandPathFmt, c.Host.Database, err)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return filepath.Clean(path), nil
}
