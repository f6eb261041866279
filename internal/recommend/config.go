// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"fmt"
	"math"
	"strings"
)

// SimilarityMode selects how item-item similarity is computed.
type SimilarityMode string

const (
	// SimilarityJaccard divides co-occurrence by the union of item frequencies.
	SimilarityJaccard SimilarityMode = "jaccard"
	// SimilarityLift divides co-occurrence probability by the product of item probabilities.
	SimilarityLift SimilarityMode = "lift"
)

// DefaultTimeDecayCoefficient is the decay rate per day.
const DefaultTimeDecayCoefficient = 30.0

// secondsPerDay converts timestamp differences to days.
const secondsPerDay = 24 * 60 * 60

// ParseSimilarityMode converts a case-insensitive name into a SimilarityMode.
func ParseSimilarityMode(s string) (SimilarityMode, error) {
	mode := SimilarityMode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case SimilarityJaccard, SimilarityLift:
		return mode, nil
	default:
		return "", &ConfigError{Field: "similarity", Reason: fmt.Sprintf("got %q", s), Err: ErrUnsupportedSimilarity}
	}
}

// Config is the model configuration fixed at construction.
type Config struct {
	// Similarity is the similarity mode. Defaults to jaccard.
	Similarity SimilarityMode `json:"similarity"`

	// TimeDecayCoefficient is the exponential decay rate per day.
	// Larger values decay faster. Must be positive and finite.
	TimeDecayCoefficient float64 `json:"time_decay_coefficient"`

	// ReferenceTime is the decay origin in seconds. Nil uses the most recent
	// timestamp in the fitted data.
	ReferenceTime *float64 `json:"reference_time,omitempty"`

	// EnableTimeDecay turns decay on when the data carries timestamps.
	EnableTimeDecay bool `json:"enable_time_decay"`
}

// DefaultConfig returns the default model configuration.
func DefaultConfig() Config {
	return Config{
		Similarity:           SimilarityJaccard,
		TimeDecayCoefficient: DefaultTimeDecayCoefficient,
		EnableTimeDecay:      true,
	}
}

// Validate checks the configuration and returns a *ConfigError on failure.
func (c *Config) Validate() error {
	if _, err := ParseSimilarityMode(string(c.Similarity)); err != nil {
		return err
	}
	if c.TimeDecayCoefficient <= 0 || math.IsNaN(c.TimeDecayCoefficient) || math.IsInf(c.TimeDecayCoefficient, 0) {
		return &ConfigError{
			Field:  "time_decay_coefficient",
			Reason: fmt.Sprintf("must be positive and finite, got %v", c.TimeDecayCoefficient),
			Err:    ErrInvalidDecay,
		}
	}
	if c.ReferenceTime != nil && (math.IsNaN(*c.ReferenceTime) || math.IsInf(*c.ReferenceTime, 0)) {
		return &ConfigError{
			Field:  "reference_time",
			Reason: fmt.Sprintf("must be finite, got %v", *c.ReferenceTime),
			Err:    ErrInvalidDecay,
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() Config {
	clone := *c
	if c.ReferenceTime != nil {
		t := *c.ReferenceTime
		clone.ReferenceTime = &t
	}
	return clone
}
