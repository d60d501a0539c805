// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/paydesk/internal/clock"
)

// Config is the application configuration.
type Config struct {
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`
	Language string `mapstructure:"language" yaml:"language"`
	// Timezone is an IANA zone name that decides where calendar months
	// begin. Empty or "Local" uses the host zone.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
	// Operator is the default username recorded on payments.
	Operator string `mapstructure:"operator" yaml:"operator"`
}

// Defaults returns the built-in configuration values keyed the way viper
// expects them.
func Defaults() map[string]any {
	return map[string]any{
		"database.type": "sqlite",
		"database.dsn":  "./paydesk.db",
		"language":      "en",
		"timezone":      "Local",
		"operator":      "",
	}
}

// Location resolves Timezone. Empty or "Local" is the process zone.
func (c Config) Location() (*time.Location, error) {
	tz := c.Timezone
	if strings.EqualFold(tz, "local") {
		tz = ""
	}
	sys, err := clock.NewSystem(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return sys.Loc, nil
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Paydesk")
		default: // Linux, macOS, etc.
			configDir = "/etc/paydesk"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "paydesk")
	}

	return filepath.Join(configDir, "paydesk.yaml"), nil
}

var configFileUsed string

// ConfigFileUsed returns the file read by the last LoadConfig, or "".
func ConfigFileUsed() string { return configFileUsed }

// LoadConfig merges, in increasing precedence, defaults, paydesk.yaml from
// the user, system and current directories (or explicitPath), PAYDESK_*
// environment variables and the flags of cmd.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("paydesk")
	v.SetConfigType("yaml")

	// An explicit --config path wins over the search paths.
	if explicitPath != nil && *explicitPath != "" {
		v.SetConfigFile(*explicitPath)
	}
	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless it was asked for explicitly.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}
	configFileUsed = v.ConfigFileUsed()

	v.SetEnvPrefix("paydesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

// WriteConfigFile stores c as YAML in the user (or system) config
// directory and returns the path written.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := getConfigPath(system)
	if err != nil {
		return "", err
	}
	return path, WriteConfigTo(path, c)
}

// WriteConfigTo stores c as YAML at path.
func WriteConfigTo[T any](path string, c *T) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the DSN may carry credentials.
	return os.WriteFile(path, data, 0600)
}
