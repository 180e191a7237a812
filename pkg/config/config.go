package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig wraps any failure to parse environment variables into a
// configuration struct.
var ErrParsingConfig = errors.New("config: failed to parse environment")

var loadDotEnv sync.Once

// Load parses environment variables into a new configuration struct of type
// T. The first call in a process also loads a .env file from the working
// directory if one exists; a missing file is not an error.
func Load[T any]() (T, error) {
	loadDotEnv.Do(func() {
		_ = godotenv.Load()
	})

	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error. Intended for composition roots
// where a misconfigured service should refuse to start.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(err)
	}
	return cfg
}
