// Package config loads tool-level configuration for go-dc42 using Viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ToolConfig holds configuration for the imaging commands.
type ToolConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// Overwrite allows commands to replace existing output files.
	Overwrite bool `mapstructure:"overwrite"`
}

// Load reads dc42-config.yaml from the usual locations, applying defaults
// and DC42_* environment overrides.
func Load() (*ToolConfig, error) {
	v := viper.New()
	v.SetConfigName("dc42-config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.dc42")
	v.AddConfigPath("/etc/dc42")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("overwrite", false)

	v.SetEnvPrefix("DC42")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg ToolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
