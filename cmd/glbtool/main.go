// glbtool is a CLI utility for inspecting and importing GLB (binary glTF) files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-glb/internal/config"
	"github.com/Faultbox/midgard-glb/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command := args[0]
	args = args[1:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args, stdout, stderr)
	case "tree":
		err = cmdTree(args, stdout, stderr)
	case "meshes", "ls":
		err = cmdMeshes(args, stdout, stderr)
	case "dump":
		err = cmdDump(args, stdout, stderr)
	case "textures", "tex":
		err = cmdTextures(args, stdout, stderr)
	case "config":
		err = cmdConfig(args, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}

	if err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `glbtool - GLB (binary glTF 2.0) inspection utility

Usage:
  glbtool <command> [options] <file.glb>

Commands:
  info <file.glb>                  Show container and manifest summary
  tree <file.glb>                  Import and print the scene hierarchy
  meshes <file.glb>                List decoded primitives and skips
  dump <file.glb>                  Dump the decoded import as YAML
  textures [-o dir] <file.glb>     List (and extract) embedded textures
  config [-o path | -save]         Print or write the effective config

Common options:
  -config <path>   Config file (default ./glbtool.yaml or user config dir)
  -debug           Enable debug logging
  -no-textures     Skip decoding embedded images
  -format <fmt>    Output format: text, yaml
  -log-file <path> Write logs to a rotating file

Examples:
  glbtool info model.glb
  glbtool tree -format yaml model.glb
  glbtool textures -o ./out model.glb`)
}

var errUsage = errors.New("usage")

// command is the shared state of one subcommand invocation.
type command struct {
	fs     *flag.FlagSet
	cfg    *config.Config
	log    *zap.Logger
	stdout io.Writer
}

// newCommand builds a flag set carrying the common config flags. Call parse
// after registering subcommand-specific flags.
func newCommand(name string, stdout, stderr io.Writer) (*command, *config.Flags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	flags := &config.Flags{}
	flags.Register(fs)
	return &command{fs: fs, stdout: stdout}, flags
}

// parse parses args, loads config and initializes logging. usage is printed
// when fewer than minArgs positional arguments remain.
func (c *command) parse(args []string, flags *config.Flags, minArgs int, usage string) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if c.fs.NArg() < minArgs {
		fmt.Fprintf(c.fs.Output(), "Usage: glbtool %s\n", usage)
		return errUsage
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	c.cfg = cfg
	c.log = logger.Named(c.fs.Name())
	return nil
}
