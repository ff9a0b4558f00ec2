package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given files (".env" if none) into the
// process environment. Missing files are ignored; variables that are already
// set win over file values.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ParseEnv reads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("%w: %v", ErrMissingCredential, err)
	}
	return e, nil
}

// Load reads .env, the environment and the optional settings file.
func Load() (Env, *Manager, error) {
	if err := LoadDotEnv(); err != nil {
		return Env{}, nil, err
	}
	e, err := ParseEnv()
	if err != nil {
		return Env{}, nil, err
	}
	m := NewManager(e.SettingsPath)
	if _, err := m.Load(); err != nil {
		return Env{}, nil, err
	}
	return e, m, nil
}
