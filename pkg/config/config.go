// Package config loads kconfig-select settings by layering embedded
// defaults, an optional user config file and environment variables.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kbuild-tools/kconfig-select/pkg/errors"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. KCONFIG_SELECT_CONFIG_ROOT.
const EnvPrefix = "KCONFIG_SELECT_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config holds the user-configurable settings
type Config struct {
	// ConfigRoot is the root directory of the config store
	ConfigRoot string `koanf:"config_root"`

	// DefaultType is the build type assumed when -t is not given
	DefaultType string `koanf:"default_type"`

	// CommitMessage is used for automatic git commits in the store
	CommitMessage string `koanf:"commit_message"`

	// MakeCommand is the build tool used for out-of-tree initialization
	MakeCommand string `koanf:"make_command"`
}

// UserConfigPath returns the path of the optional user config file
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "kconfig-select", "config.toml")
}

// Load builds the effective configuration: embedded defaults, then the
// user config file if it exists, then KCONFIG_SELECT_* environment
// variables. Later layers win.
func Load() (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load default config")
	}

	// 2. User config file, if present
	path := UserConfigPath()
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
		}
	}

	// 3. Environment overrides: KCONFIG_SELECT_CONFIG_ROOT -> config_root
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}

	cfg.ConfigRoot = expandHome(cfg.ConfigRoot)
	return &cfg, nil
}

// expandHome replaces a leading "~" with the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}
