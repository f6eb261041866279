// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sar/internal/api"
	"github.com/tomtom215/sar/internal/health"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/supervisor"
	"github.com/tomtom215/sar/internal/supervisor/services"
)

// runCommand executes the pipeline once. A partial injection is a failure.
func runCommand(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs, configPath := newFlagSet("run", stderr)
	output := fs.String("output", "", "write generated recommendations as JSON to this file ('-' for stdout)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	a, err := bootstrap(*configPath, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	p, cleanup, err := a.newPipeline(ctx, stdin)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, runErr := p.Run(ctx)
	if summary != nil && *output != "" {
		if err := writeRecommendations(*output, summary.Generated(), stdout); err != nil {
			return errors.Join(runErr, err)
		}
		logging.Info().Str("path", *output).Int("count", len(summary.Generated())).Msg("Recommendations written")
	}
	return runErr
}

// serveCommand runs the pipeline and status server under the supervisor
// tree until SIGINT or SIGTERM.
func serveCommand(ctx context.Context, args []string, stdin io.Reader, stderr io.Writer) error {
	fs, configPath := newFlagSet("serve", stderr)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	a, err := bootstrap(*configPath, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	p, cleanup, err := a.newPipeline(ctx, stdin)
	if err != nil {
		return err
	}
	defer cleanup()

	checker, err := health.NewChecker(a.db, a.cfg.Health)
	if err != nil {
		return err
	}
	logging.Info().Uint64("memory_limit_mb", checker.Limit()>>20).Dur("interval", a.cfg.Health.CheckInterval).Msg("Health monitor configured")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	tree.AddPipelineService(services.NewPipelineService(p, a.cfg.Pipeline.Interval))
	tree.AddPipelineService(services.NewHealthMonitorService(checker, a.cfg.Health.CheckInterval))

	if a.cfg.Server.Enabled {
		handler := api.NewHandler(a.db, checker, p, version)
		server := &http.Server{
			Addr:              a.cfg.Server.Addr(),
			Handler:           api.NewRouter(handler).WithMiddleware(api.ChiMiddlewareConfigFrom(a.cfg.Server)).SetupChi(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       a.cfg.Server.Timeout,
			WriteTimeout:      a.cfg.Server.Timeout,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
		logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")
	} else {
		logging.Info().Msg("Status server disabled (server.enabled=false)")
	}

	logging.Info().Dur("interval", a.cfg.Pipeline.Interval).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
			serveErr = err
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
	return serveErr
}

// healthcheckCommand runs the checks once. The exit code is the verdict.
func healthcheckCommand(ctx context.Context, args []string, stderr io.Writer) error {
	fs, configPath := newFlagSet("healthcheck", stderr)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	a, err := bootstrap(*configPath, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	checker, err := health.NewChecker(a.db, a.cfg.Health)
	if err != nil {
		return err
	}

	report := checker.Check(ctx)
	if err := report.Err(); err != nil {
		return err
	}
	logging.Info().Uint64("memory_limit_mb", checker.Limit()>>20).Msg("Health check passed")
	return nil
}

// writeRecommendations dumps recs as indented JSON. path "-" writes to stdout.
func writeRecommendations(path string, recs []recommend.Recommendation, stdout io.Writer) (err error) {
	if recs == nil {
		recs = []recommend.Recommendation{}
	}

	w := stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	return nil
}
