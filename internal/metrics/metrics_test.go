// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		errorType string
	}{
		{
			name:      "successful insert",
			operation: "INSERT",
			table:     "recommendations",
		},
		{
			name:      "short error",
			operation: "SELECT",
			table:     "interactions",
			err:       errors.New("connection refused"),
			errorType: "connection refused",
		},
		{
			name:      "long error truncated to 50 chars",
			operation: "SELECT",
			table:     "sar_runs",
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated"),
			errorType: "this is a very long error message that exceeds fif",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, 10*time.Millisecond, tt.err)

			if tt.err == nil {
				return
			}
			got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.errorType))
			if got < 1 {
				t.Errorf("DBQueryErrors{%s} = %v, want >= 1", tt.errorType, got)
			}
		})
	}
}

func TestRecordFit(t *testing.T) {
	beforeErrors := testutil.ToFloat64(FitErrors)

	RecordFit(time.Second, 120, 10, 7, 33, nil)
	if got := testutil.ToFloat64(ModelInteractions); got != 120 {
		t.Errorf("ModelInteractions = %v, want 120", got)
	}
	if got := testutil.ToFloat64(ModelUsers); got != 10 {
		t.Errorf("ModelUsers = %v, want 10", got)
	}
	if got := testutil.ToFloat64(ModelItems); got != 7 {
		t.Errorf("ModelItems = %v, want 7", got)
	}
	if got := testutil.ToFloat64(SimilarityNonzero); got != 33 {
		t.Errorf("SimilarityNonzero = %v, want 33", got)
	}

	RecordFit(time.Second, 999, 999, 999, 999, errors.New("bad record"))
	if got := testutil.ToFloat64(FitErrors); got != beforeErrors+1 {
		t.Errorf("FitErrors = %v, want %v", got, beforeErrors+1)
	}
	if got := testutil.ToFloat64(ModelUsers); got != 10 {
		t.Errorf("failed fit changed ModelUsers to %v", got)
	}
}

func TestRecordInjectBatch(t *testing.T) {
	success := InjectRows.WithLabelValues("metrics-test", "success")
	failure := InjectRows.WithLabelValues("metrics-test", "failure")
	beforeOK, beforeFail := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	RecordInjectBatch("metrics-test", 100, nil)
	RecordInjectBatch("metrics-test", 40, errors.New("timeout"))
	RecordInjectRetry("metrics-test")

	if got := testutil.ToFloat64(success) - beforeOK; got != 100 {
		t.Errorf("success rows delta = %v, want 100", got)
	}
	if got := testutil.ToFloat64(failure) - beforeFail; got != 40 {
		t.Errorf("failure rows delta = %v, want 40", got)
	}
	if got := testutil.ToFloat64(InjectBatchRetries.WithLabelValues("metrics-test")); got < 1 {
		t.Errorf("retries = %v, want >= 1", got)
	}
}

func TestRecordPipelineRun(t *testing.T) {
	ok := PipelineRuns.WithLabelValues("success")
	before := testutil.ToFloat64(ok)

	RecordPipelineRun(2*time.Second, nil)
	if got := testutil.ToFloat64(ok); got != before+1 {
		t.Errorf("successful runs = %v, want %v", got, before+1)
	}
	if testutil.ToFloat64(PipelineLastSuccess) == 0 {
		t.Error("PipelineLastSuccess not set")
	}
}

func TestRecordEvaluationAndHealth(t *testing.T) {
	RecordEvaluation(10, map[string]float64{"precision": 0.25, "map": 0.5})
	if got := testutil.ToFloat64(EvaluationScore.WithLabelValues("precision", "10")); got != 0.25 {
		t.Errorf("precision@10 = %v, want 0.25", got)
	}
	if got := testutil.ToFloat64(EvaluationScore.WithLabelValues("map", "10")); got != 0.5 {
		t.Errorf("map@10 = %v, want 0.5", got)
	}

	tests := []struct {
		healthy bool
		want    float64
	}{
		{true, 1},
		{false, 0},
	}
	for _, tt := range tests {
		RecordHealthCheck("database", tt.healthy)
		if got := testutil.ToFloat64(HealthCheckStatus.WithLabelValues("database")); got != tt.want {
			t.Errorf("HealthCheckStatus(healthy=%v) = %v, want %v", tt.healthy, got, tt.want)
		}
	}
}

func TestRecordAPIRequest(t *testing.T) {
	RecordAPIRequest("GET", "/health", 200, 5*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/health", "200")); got < 1 {
		t.Errorf("APIRequestsTotal = %v, want >= 1", got)
	}
}
