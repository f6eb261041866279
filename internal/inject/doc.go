// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package inject writes generated recommendations to one or more sinks.

Recommendations are split into batches of inject.batch_size rows and each
batch is written to every sink concurrently. A failed batch write is
retried up to inject.max_retries attempts with exponential backoff starting
at inject.retry_delay. Each attempt runs under inject.transaction_timeout.

Every sink sits behind its own circuit breaker (sony/gobreaker). After
inject.breaker_failure_threshold consecutive failed attempts the breaker
opens and further writes to that sink fail fast with ErrCircuitOpen until
inject.breaker_timeout elapses. An optional token bucket
(inject.batches_per_second) paces batches.

A batch counts as injected only when every sink accepted it. Failed batches
do not stop the run; the Result reports the totals:

	res, err := injector.Inject(ctx, runID, recs)
	if err != nil {
	    return err // canceled or misconfigured
	}
	if !res.Success() {
	    logging.Warn().Float64("success_rate", res.SuccessRate()).Msg("Partial injection")
	}

Sinks:
  - DuckDBSink writes to the recommendations table with INSERT OR REPLACE,
    so a retried batch is idempotent.
  - RedisSink stores each user's list as a sorted set keyed by
    redis.key_prefix + user id, replaced atomically per user.
*/
package inject
