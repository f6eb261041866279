// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/inject"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/pipeline"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `Usage: sar <command> [flags]

Commands:
  run          fit the model once, inject recommendations and exit
  serve        run the pipeline under supervision with the status server
  healthcheck  check database connectivity and memory usage
  version      print the version

Run 'sar <command> -h' for command flags.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "run":
		err = runCommand(ctx, rest, stdin, stdout, stderr)
	case "serve":
		err = serveCommand(ctx, rest, stdin, stderr)
	case "healthcheck":
		err = healthcheckCommand(ctx, rest, stderr)
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "sar %s\n", version)
		return 0
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		logging.Error().Err(err).Str("command", cmd).Msg("Command failed")
		return 1
	}
}

var errUsage = errors.New("usage error")

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config.yaml (default: CONFIG_PATH or search paths)")
	return fs, configPath
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		return errUsage
	}
	return nil
}

// app holds what every command shares after startup.
type app struct {
	cfg *config.Config
	db  *database.DB
}

// bootstrap loads configuration, configures logging and opens DuckDB.
func bootstrap(configPath string, stderr io.Writer) (*app, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    stderr,
	})
	logging.Info().Str("version", version).Str("config", cfg.String()).Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logging.Info().Str("path", db.Path()).Msg("Database initialized successfully")

	return &app{cfg: cfg, db: db}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

// newPipeline wires the sinks, injector and pipeline. The returned cleanup
// releases sink connections.
func (a *app) newPipeline(ctx context.Context, stdin io.Reader) (*pipeline.Pipeline, func(), error) {
	sinks := []inject.Sink{inject.NewDuckDBSink(a.db)}
	cleanup := func() {}

	if a.cfg.Redis.Enabled {
		redisSink, err := inject.NewRedisSink(ctx, a.cfg.Redis)
		if err != nil {
			return nil, cleanup, err
		}
		sinks = append(sinks, redisSink)
		cleanup = func() {
			if err := redisSink.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing redis client")
			}
		}
		logging.Info().Str("addr", a.cfg.Redis.Addr).Msg("Redis sink enabled")
	}

	injector, err := inject.New(a.cfg.Inject, sinks...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	p, err := pipeline.New(a.cfg, a.db, injector, pipeline.WithStdin(stdin))
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return p, cleanup, nil
}
