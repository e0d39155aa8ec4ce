package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LITESTORE"

// Config holds the CLI configuration
type Config struct {
	Path     string
	LogLevel string
}

// Load resolves configuration from flags, LITESTORE_* environment variables
// and an optional .litestore.yaml, in that order of precedence.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetConfigName(".litestore")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("path", "litestore.db")
	v.SetDefault("log-level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := Config{
		Path:     v.GetString("path"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.Path == "" {
		return Config{}, fmt.Errorf("database path is required")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLevel maps a level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
