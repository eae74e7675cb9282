package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (LAMBDALENS_*)
// 2. Config file (.lambdalens.yaml in the working directory or home)
// 3. Default values
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFromDir(wd)
}

// LoadFromDir loads configuration searching the given directory first.
func LoadFromDir(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName(".lambdalens")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("LAMBDALENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("namespaces.roots")
	v.BindEnv("namespaces.stream_package")
	v.BindEnv("source_type")
	v.BindEnv("workers")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - defaults + env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("namespaces.roots", defaults.Namespaces.Roots)
	v.SetDefault("namespaces.stream_package", defaults.Namespaces.StreamPackage)
	v.SetDefault("source_type", defaults.SourceType)
	v.SetDefault("workers", defaults.Workers)
}

// Validate checks configuration invariants.
func Validate(cfg *Config) error {
	if len(cfg.Namespaces.Roots) == 0 {
		return fmt.Errorf("namespaces.roots must not be empty")
	}
	if cfg.SourceType == "" {
		return fmt.Errorf("source_type must not be empty")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}
