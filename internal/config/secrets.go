package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// LoadSecrets reads credentials from the process environment merged over an
// optional dotenv file. Variables set in the environment win. The process
// environment is never modified, so a later reload sees edits to the file.
func LoadSecrets(dotenvPath string) (Secrets, error) {
	environment := make(map[string]string)
	if dotenvPath != "" {
		values, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Secrets{}, fmt.Errorf("load %q: %w", dotenvPath, err)
		}
		maps.Copy(environment, values)
	}
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			environment[key] = value
		}
	}

	var secrets Secrets
	if err := env.Parse(&secrets, env.Options{Environment: environment}); err != nil {
		return Secrets{}, fmt.Errorf("parse secrets from environment: %w", err)
	}
	return secrets, nil
}
