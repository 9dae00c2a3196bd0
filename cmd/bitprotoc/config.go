package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the CLI's optional on-disk configuration: log level, the
// default diagnostics output format, and the watch subcommand's debounce
// window. Every field has a sensible default so a missing config file is
// not an error.
type Config struct {
	LogLevel      string        `yaml:"log_level"`
	OutputFormat  string        `yaml:"output_format"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:      "info",
		OutputFormat:  "json",
		WatchDebounce: 300 * time.Millisecond,
	}
}

// loadConfig reads path if it exists, overlaying it onto the defaults. A
// missing file is not an error — the CLI is fully usable with no config.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("bitprotoc: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("bitprotoc: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) slogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(cfg Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.slogLevel()}))
}
