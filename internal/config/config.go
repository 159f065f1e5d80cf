// Package config holds the interpreter's user settings, read from an
// optional YAML file and overridden by command-line flags.
package config

import (
	"mslash/internal/runtime"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk settings file.
type Config struct {
	Debug       bool   `yaml:"debug"`
	InputPrompt string `yaml:"input_prompt"`
	PausePrompt string `yaml:"pause_prompt"`
	HistoryFile string `yaml:"history_file"`
	MaxDepth    int    `yaml:"max_depth"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		InputPrompt: "> ",
		PausePrompt: runtime.DefaultPausePrompt,
		MaxDepth:    runtime.DefaultMaxDepth,
	}
}

// Load reads path and applies it on top of Default. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML settings. Keys missing from data keep their default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if cfg.MaxDepth <= 0 {
		return Config{}, errors.Errorf("max_depth must be positive, got %d", cfg.MaxDepth)
	}
	return cfg, nil
}
