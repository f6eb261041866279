// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package logging provides structured logging for SAR using zerolog.

A single global logger is configured once at startup with Init and shared by
every package. Output is JSON by default; the console format is intended for
local runs.

	logging.Init(logging.Config{Level: "debug", Format: "console"})
	logging.Info().Str("table", "recommendations").Int("rows", n).Msg("Injection complete")

Pipeline runs carry a run ID through context. Ctx returns a logger with the
run_id and request_id fields already attached:

	ctx = logging.ContextWithNewRunID(ctx)
	logging.Ctx(ctx).Info().Msg("Fitting model")

Libraries that expect a *slog.Logger (suture's event hook) are bridged with
NewSlogLogger, which writes through the same zerolog backend.
*/
package logging
