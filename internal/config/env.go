package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every env tag, e.g. PINVITE_DATABASE_URL.
const EnvPrefix = "PINVITE_"

// DotEnvFile is loaded from the working directory when present.
var DotEnvFile = ".env"

// ApplyEnv loads .env (without overriding variables already set) and then
// overrides cfg with any PINVITE_* variables.
func ApplyEnv(cfg *Config) error {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	return ParseEnv(cfg)
}

// ParseEnv overrides cfg from the environment only.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
