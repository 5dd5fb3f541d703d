// Package runner defines the contract with the external execution
// engine. The engine itself lives outside this repository; everything
// here is the versioned boundary the orchestration layer talks through.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
	"github.com/austral-labs/snippet-engine-go/internal/language"
)

// RunResult is the engine's answer to parse/execute. Both slices keep
// program order end-to-end.
type RunResult struct {
	Output []string
	Errors []string
}

// LintError is one analyzer finding.
type LintError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// ErrNoMoreInputs is returned by an InputSource once its values are
// exhausted. The engine surfaces it as a runtime error when a snippet
// reads past the supplied inputs.
var ErrNoMoreInputs = errors.New("no more inputs")

// InputSource supplies values for a snippet's readInput calls, consumed
// once per read in call order.
type InputSource interface {
	Next() (string, error)
}

// QueueSource is an InputSource backed by a fixed ordered list.
type QueueSource struct {
	values []string
	pos    int
}

func NewQueueSource(values []string) *QueueSource {
	return &QueueSource{values: values}
}

func (q *QueueSource) Next() (string, error) {
	if q.pos >= len(q.values) {
		return "", ErrNoMoreInputs
	}
	v := q.values[q.pos]
	q.pos++
	return v, nil
}

// Runner is one engine instance bound to a single version. Instances
// are constructed fresh per call and hold no state between calls.
type Runner interface {
	Run(ctx context.Context, code string, inputs InputSource) (RunResult, error)
	Format(ctx context.Context, code string, options any) (string, error)
	Lint(ctx context.Context, code string, options any) ([]LintError, error)
}

// Factory builds a fresh Runner.
type Factory func() (Runner, error)

// Registry maps versions to runner factories. Adding a version is a
// table entry; unregistered versions fail before any engine I/O.
type Registry struct {
	factories map[language.Version]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[language.Version]Factory)}
}

func (r *Registry) Register(v language.Version, f Factory) {
	if f == nil {
		return
	}
	r.factories[v] = f
}

// New constructs a fresh engine instance for the version.
func (r *Registry) New(v language.Version) (Runner, error) {
	f, ok := r.factories[v]
	if !ok {
		return nil, fmt.Errorf("%w: no runner registered for %q", fault.ErrUnsupportedVersion, v)
	}
	return f()
}
