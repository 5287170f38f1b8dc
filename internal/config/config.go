// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads and writes the Signon configuration. Settings come
// from a YAML file, environment variables prefixed with SIGNON, and CLI
// flags, in ascending order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the typed view of the Signon configuration.
type Config struct {
	Server struct {
		// URL is the base URL of the identity service, e.g. "https://id.example.com".
		URL string `mapstructure:"url" yaml:"url"`
	} `mapstructure:"server" yaml:"server"`

	// Redirect is the default destination after a successful sign-in when the
	// caller did not ask for a specific one.
	Redirect string `mapstructure:"redirect" yaml:"redirect"`

	// Language selects the UI language ("en", "de").
	Language string `mapstructure:"language" yaml:"language"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"debug" yaml:"debug"`

	Database struct {
		// Type selects the session store backend: "sqlite", "postgres" or "mysql".
		Type string `mapstructure:"type" yaml:"type"`
		// Dsn is the data source name. For SQLite this is the database file path.
		Dsn string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`

	Session struct {
		// TTL is how long a stored session stays valid, e.g. "12h".
		// Empty means stored sessions do not expire.
		TTL string `mapstructure:"ttl" yaml:"ttl"`
		// KeyFile holds the key that seals tokens at rest. It is created on
		// first use if missing.
		KeyFile string `mapstructure:"key_file" yaml:"key_file"`
	} `mapstructure:"session" yaml:"session"`

	Audit struct {
		// Path is the sign-in attempt journal file. Empty disables the journal.
		Path string `mapstructure:"path" yaml:"path"`
		// MaxSizeKB rotates the journal once it grows past this size.
		MaxSizeKB int `mapstructure:"max_size_kb" yaml:"max_size_kb"`
	} `mapstructure:"audit" yaml:"audit"`
}

// SessionTTL parses the configured session lifetime. Empty, unparseable or
// negative values mean stored sessions do not expire.
func (c *Config) SessionTTL() time.Duration {
	if c.Session.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Signon")
		default: // Linux, macOS, etc.
			configDir = "/etc/signon"
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "signon")
	}

	return filepath.Join(configDir, "signon.yaml"), nil
}

// LoadConfig builds the configuration from defaults, config files, the
// environment and the command's flags, then unmarshals it into T.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search paths (signon.yaml)
	v.SetConfigName("signon")
	v.SetConfigType("yaml")

	// 3. Add explicit config file path if provided via --config flag.
	// This has the highest precedence for file-based configuration.
	if additionalConfigFilePath != nil {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	// 4. Add standard config locations
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for signon.yaml in current dir

	// 5. Read in the primary config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if the file is not found, but other errors are fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	// 6. Read from environment variables
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("signon")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 7. CLI flags take precedence over everything else.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// configFileBanner explains the settings at the top of a generated file.
const configFileBanner = `# Signon configuration file.
#
#   server.url        base URL of the identity service, e.g. "https://id.example.com"
#   redirect          destination after a successful sign-in
#   language          UI language ("en", "de")
#   database          session store: type "sqlite" (default), "postgres" or "mysql"
#                     plus the DSN (for sqlite, the database file path)
#   session.ttl       how long a stored session stays valid, e.g. "12h"
#   session.key_file  key that seals tokens at rest, created on first use
#   audit.path        sign-in attempt journal (JSONL); empty disables it
#   audit.max_size_kb rotate the journal once it grows past this size
#
# Values can also come from SIGNON_* environment variables or CLI flags.

`

// WriteConfigFile marshals the configuration to YAML, prepends the banner
// and writes it to the user or system config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	data = append([]byte(configFileBanner), data...)

	// Create directory if it doesn't exist
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	err = os.WriteFile(path, data, 0600) // Use 0600 for security, as it may contain secrets
	if err != nil {
		return err
	}

	return nil
}
