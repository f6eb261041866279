// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Use errors.Is against these; the concrete types below
// carry the details.
var (
	ErrUnsupportedSimilarity = errors.New("unsupported similarity mode")
	ErrInvalidDecay          = errors.New("invalid time decay configuration")
	ErrInvalidCount          = errors.New("invalid recommendation count")

	ErrNotFitted     = errors.New("model is not fitted")
	ErrAlreadyFitted = errors.New("model is already fitted")

	ErrUnknownUser = errors.New("unknown user")
	ErrUnknownItem = errors.New("unknown item")

	ErrMalformedRecord = errors.New("malformed interaction record")
)

// ConfigError reports an invalid model configuration or argument.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s: %v", e.Field, e.Reason, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// StateError reports a call that is invalid in the model's current state.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// UnknownEntityError lists identifiers absent from the fitted index.
type UnknownEntityError struct {
	IDs []string
	Err error
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, strings.Join(e.IDs, ", "))
}

func (e *UnknownEntityError) Unwrap() error { return e.Err }

// RecordError identifies the input record that failed validation.
// Position is zero-based; it is -1 when the problem concerns the whole input.
type RecordError struct {
	Position int
	Field    string
	Reason   string
}

func (e *RecordError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("%v: %s", ErrMalformedRecord, e.Reason)
	}
	return fmt.Sprintf("%v at position %d: %s %s", ErrMalformedRecord, e.Position, e.Field, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }
