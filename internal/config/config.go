// Package config handles glbtool configuration loading and management.
package config

import "fmt"

// Config holds all tool settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig holds decoder settings.
type ImportConfig struct {
	DecodeTextures bool  `yaml:"decode_textures"`  // Decode embedded images into pixels
	MaxFileSizeMB  int64 `yaml:"max_file_size_mb"` // 0 = unlimited
}

// OutputConfig holds report formatting settings.
type OutputConfig struct {
	Format string `yaml:"format"` // "text" or "yaml"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			DecodeTextures: true,
			MaxFileSizeMB:  256,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// MaxFileSize returns the import size limit in bytes (0 = unlimited).
func (c *Config) MaxFileSize() int64 {
	return c.Import.MaxFileSizeMB * 1024 * 1024
}

// Validate checks values a YAML file or flag could have set badly.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatText, FormatYAML:
	default:
		return fmt.Errorf("output format %q: want %s or %s", c.Output.Format, FormatText, FormatYAML)
	}
	if c.Import.MaxFileSizeMB < 0 {
		return fmt.Errorf("max_file_size_mb must not be negative, got %d", c.Import.MaxFileSizeMB)
	}
	return nil
}
