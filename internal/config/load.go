package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
// flags may be nil.
func Load(flags *Flags) (*Config, error) {
	if flags == nil {
		flags = &Flags{}
	}

	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := flags.Config
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnvConfig names an environment variable holding a config file path. It is
// consulted when no -config flag is given, before the search locations.
const EnvConfig = "GLBTOOL_CONFIG"

const (
	localConfigName = "glbtool.yaml"
	userConfigName  = "config.yaml"
	appDirName      = "midgard-glb"
)

// searchPaths lists implicit config locations in lookup order: the working
// directory, then the per-user config directory.
func searchPaths() []string {
	paths := []string{localConfigName}
	if dir := ConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, userConfigName))
	}
	return paths
}

func findConfigFile() string {
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	for _, path := range searchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns glbtool's directory under the user config root, or ""
// when the platform reports none.
func ConfigDir() string {
	root, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(root, appDirName)
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so a
// misspelt setting is not silently ignored. An empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
