package config

import "flag"

// Flags holds command-line overrides. Each glbtool subcommand binds its own
// set with Register.
type Flags struct {
	Config     string
	Debug      bool
	NoTextures bool
	Format     string
	LogFile    string
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.NoTextures, "no-textures", false, "Skip decoding embedded images")
	fs.StringVar(&f.Format, "format", "", "Output format (text, yaml)")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.NoTextures {
		cfg.Import.DecodeTextures = false
	}
	if f.Format != "" {
		cfg.Output.Format = f.Format
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
