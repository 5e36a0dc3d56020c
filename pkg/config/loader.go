package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"9000"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadDotEnv reads .env.<environment> and then .env from dir into the process
// environment. Variables that are already set are never overwritten, and the
// environment-specific file wins over the generic one. Missing files are
// skipped.
func LoadDotEnv(dir, environment string) error {
	files := make([]string, 0, 2)
	if environment != "" {
		files = append(files, filepath.Join(dir, ".env."+environment))
	}
	files = append(files, filepath.Join(dir, ".env"))

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
