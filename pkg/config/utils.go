package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultEnvFile is looked up when FindEnv is given an empty name.
const DefaultEnvFile = ".env"

// FindEnv resolves name against the working directory and each of its
// parents, returning the first existing match. Absolute names are checked as is.
func FindEnv(name string) (string, error) {
	if name == "" {
		name = DefaultEnvFile
	}
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		up := filepath.Dir(dir)
		if up == dir {
			return "", fmt.Errorf("%s: %w", name, os.ErrNotExist)
		}
		dir = up
	}
}
