// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game  GameConfig  `toml:"game"`
	Serve ServeConfig `toml:"serve"`
}

// GameConfig maps game-related settings.
type GameConfig struct {
	WPM              *int           `toml:"wpm"`
	Hints            *bool          `toml:"hints"`
	ToneHz           *float64       `toml:"tone"`
	RevealDelay      *time.Duration `toml:"reveal-delay"`
	AdvanceCorrect   *time.Duration `toml:"advance-correct"`
	AdvanceIncorrect *time.Duration `toml:"advance-incorrect"`
	FocusWeak        *bool          `toml:"focus-weak"`
	WeakTop          *int           `toml:"weak-top"`
	WeakFactor       *float64       `toml:"weak-factor"`
	WeakWindow       *int           `toml:"weak-window"`
}

// ServeConfig maps HTTP host settings.
type ServeConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
