package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Discover when no config file exists. Callers
// fall back to Default.
var ErrNotFound = errors.New("config not found")

// EnvPath names the variable that points at an explicit config file.
const EnvPath = "MOODFLIX_CONFIG"

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "moodflix", "config.toml")
}

// SearchPaths lists the candidate files checked after MOODFLIX_CONFIG.
func SearchPaths() []string {
	return []string{
		"./config.toml",
		DefaultPath(),
		"/etc/moodflix/config.toml",
	}
}

// Discover finds the config file using the standard search order:
//  1. MOODFLIX_CONFIG environment variable
//  2. ./config.toml
//  3. $XDG_CONFIG_HOME/moodflix/config.toml
//  4. /etc/moodflix/config.toml
//
// An explicit MOODFLIX_CONFIG that does not exist is an error, never a
// silent fallback.
func Discover() (string, error) {
	if envPath := os.Getenv(EnvPath); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvPath, envPath, err)
		}
		return envPath, nil
	}

	paths := SearchPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, strings.Join(paths, ", "))
}

// LoadOrDefault loads the discovered config file, or returns Default when
// none exists. The returned path is empty in the latter case.
func LoadOrDefault() (*Config, string, error) {
	path, err := Discover()
	if errors.Is(err, ErrNotFound) {
		return Default(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
