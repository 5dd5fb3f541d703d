// Package gateway wraps the external execution engine behind one
// versioned contract. Every call constructs a fresh engine instance
// through the runner registry, and every engine failure is translated
// into the shared fault taxonomy before it reaches a caller.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
	"github.com/austral-labs/snippet-engine-go/internal/language"
	"github.com/austral-labs/snippet-engine-go/internal/runner"
)

type Gateway struct {
	registry *runner.Registry
}

func New(registry *runner.Registry) *Gateway {
	if registry == nil {
		return nil
	}
	return &Gateway{registry: registry}
}

// Parse runs the snippet and returns only the engine's error list.
func (g *Gateway) Parse(ctx context.Context, version language.Version, code string) ([]string, error) {
	rn, err := g.registry.New(version)
	if err != nil {
		return nil, err
	}
	res, err := rn.Run(ctx, code, nil)
	if err != nil {
		return nil, translate("parse snippet", err)
	}
	return res.Errors, nil
}

// Execute runs the snippet. A non-empty inputs list is supplied to the
// engine as an ordered queue consumed once per readInput call.
func (g *Gateway) Execute(ctx context.Context, version language.Version, code string, inputs []string) (runner.RunResult, error) {
	rn, err := g.registry.New(version)
	if err != nil {
		return runner.RunResult{}, err
	}
	var src runner.InputSource
	if len(inputs) > 0 {
		src = runner.NewQueueSource(inputs)
	}
	res, err := rn.Run(ctx, code, src)
	if err != nil {
		return runner.RunResult{}, translate("execute snippet", err)
	}
	return res, nil
}

// Format returns the formatted snippet text.
func (g *Gateway) Format(ctx context.Context, version language.Version, code string, options any) (string, error) {
	rn, err := g.registry.New(version)
	if err != nil {
		return "", err
	}
	formatted, err := rn.Format(ctx, code, options)
	if err != nil {
		return "", translate("format snippet", err)
	}
	return formatted, nil
}

// Lint returns the analyzer findings for the snippet.
func (g *Gateway) Lint(ctx context.Context, version language.Version, code string, options any) ([]runner.LintError, error) {
	rn, err := g.registry.New(version)
	if err != nil {
		return nil, err
	}
	findings, err := rn.Lint(ctx, code, options)
	if err != nil {
		return nil, translate("lint snippet", err)
	}
	return findings, nil
}

// translate keeps caller-attributable faults as they are and folds
// everything else into an upstream fault. Callers decide status and
// retry policy from the taxonomy alone; raw engine errors never cross
// this boundary.
func translate(op string, err error) error {
	if fault.IsClient(err) || errors.Is(err, fault.ErrUpstream) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, fault.ErrUpstream, err)
}
