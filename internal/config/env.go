package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ServeEnv holds HTTP host settings read from the environment.
// Variables are prefixed with MORSEHERO_, e.g. MORSEHERO_ADDR.
type ServeEnv struct {
	Addr      string        `envconfig:"ADDR"`
	LogLevel  string        `envconfig:"LOG_LEVEL"`
	Origin    string        `envconfig:"CLIENT_ORIGIN" default:"*"`
	ToneHz    float64       `envconfig:"TONE"`
	MaxActive int           `envconfig:"MAX_SESSIONS" default:"1000"`
	IdleTTL   time.Duration `envconfig:"SESSION_TTL" default:"30m"`
}

// LoadServeEnv loads an optional .env file and then the process environment.
func LoadServeEnv(dotenv string) (ServeEnv, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ServeEnv{}, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}
	var env ServeEnv
	if err := envconfig.Process("morsehero", &env); err != nil {
		return ServeEnv{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return env, nil
}
