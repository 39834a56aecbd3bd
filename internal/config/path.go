package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDir     = "vox"
	fileName   = "config.jsonc"
	dotenvName = ".env"
)

// ResolvePath applies CLI/XDG/home fallback rules for the config file location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// DotenvPath returns the optional secrets file that sits next to the config file.
func DotenvPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), dotenvName)
}

func configDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}
	return filepath.Join(home, ".config", appDir), nil
}
