// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package source

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/tomtom215/sar/internal/recommend"
)

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("user", cel.StringType),
			cel.Variable("item", cel.StringType),
			cel.Variable("rating", cel.DoubleType),
			cel.Variable("timestamp", cel.DoubleType),
		)
	})
	return celEnv, celEnvErr
}

// Filter keeps interactions matching a CEL expression. A Filter is safe for
// concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

// NewFilter compiles expr. The expression must evaluate to a bool.
func NewFilter(expr string) (*Filter, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("filter: environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter: compile %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter: %q returns %s, want bool", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter: program: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the expression for one interaction.
func (f *Filter) Match(in recommend.Interaction) (bool, error) {
	out, _, err := f.prg.Eval(map[string]interface{}{
		"user":      in.UserID,
		"item":      in.ItemID,
		"rating":    in.Rating,
		"timestamp": in.Timestamp,
	})
	if err != nil {
		return false, fmt.Errorf("filter: eval: %w", err)
	}
	keep, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter: expression returned %T, want bool", out.Value())
	}
	return keep, nil
}

// Apply returns the interactions for which the expression is true, in input
// order. The first evaluation error aborts.
func (f *Filter) Apply(records []recommend.Interaction) ([]recommend.Interaction, error) {
	out := make([]recommend.Interaction, 0, len(records))
	for i, in := range records {
		keep, err := f.Match(in)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if keep {
			out = append(out, in)
		}
	}
	return out, nil
}
