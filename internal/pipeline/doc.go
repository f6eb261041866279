// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package pipeline runs one end-to-end recommendation job.

A run executes these stages in order, under a fresh run id attached to the
context logger:

 1. Load interactions from the configured source.
 2. Apply the optional CEL filter.
 3. Fit a new SAR model. Every run starts from an untrained model.
 4. Resolve target users: recommend.users, or every trained user.
 5. Recommend top_n items per user.
 6. Optionally evaluate against a held-out query (failures are logged, not
    fatal).
 7. Inject the recommendations into every sink.

Each run is recorded in the sar_runs table and in Prometheus. The last
RunSummary is kept in memory for the status endpoint. Only one run executes
at a time; a concurrent Run returns ErrRunInProgress.
*/
package pipeline
