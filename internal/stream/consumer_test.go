package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/austral-labs/snippet-engine-go/internal/assetstore"
	"github.com/austral-labs/snippet-engine-go/internal/engineconfig"
	"github.com/austral-labs/snippet-engine-go/internal/gateway"
	"github.com/austral-labs/snippet-engine-go/internal/language"
	"github.com/austral-labs/snippet-engine-go/internal/runner"
	"github.com/austral-labs/snippet-engine-go/internal/stateclient"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBroker serves pre-queued batches and cancels the consumer's
// context once they are exhausted.
type fakeBroker struct {
	batches [][]Message
	acks    []string
	cancel  context.CancelFunc
}

func (b *fakeBroker) EnsureGroup(context.Context, string, string) error { return nil }

func (b *fakeBroker) Read(context.Context, string, string, string, int64, time.Duration) ([]Message, error) {
	if len(b.batches) == 0 {
		b.cancel()
		return nil, nil
	}
	batch := b.batches[0]
	b.batches = b.batches[1:]
	return batch, nil
}

func (b *fakeBroker) Ack(_ context.Context, _, _, id string) error {
	b.acks = append(b.acks, id)
	return nil
}

type fakeStateReporter struct {
	calls []struct {
		SnippetID string
		State     stateclient.State
	}
	err error
}

func (f *fakeStateReporter) SetComplianceState(_ context.Context, snippetID string, state stateclient.State) error {
	f.calls = append(f.calls, struct {
		SnippetID string
		State     stateclient.State
	}{snippetID, state})
	return f.err
}

type fakeAssets struct {
	assets map[string]string
	writes map[string]string
}

func (f *fakeAssets) Get(_ context.Context, path string) (string, error) {
	code, ok := f.assets[path]
	if !ok {
		return "", errors.New("asset missing")
	}
	return code, nil
}

func (f *fakeAssets) Put(_ context.Context, path, text string) (assetstore.WriteOutcome, error) {
	if f.writes == nil {
		f.writes = map[string]string{}
	}
	f.writes[path] = text
	return assetstore.Updated, nil
}

type stubRunner struct {
	findings  []runner.LintError
	formatted string
}

func (r stubRunner) Run(context.Context, string, runner.InputSource) (runner.RunResult, error) {
	return runner.RunResult{}, nil
}
func (r stubRunner) Format(context.Context, string, any) (string, error) {
	return r.formatted, nil
}
func (r stubRunner) Lint(context.Context, string, any) ([]runner.LintError, error) {
	return r.findings, nil
}

func newGateway(rn runner.Runner) *gateway.Gateway {
	registry := runner.NewRegistry()
	registry.Register(language.V1, func() (runner.Runner, error) { return rn, nil })
	registry.Register(language.V2, func() (runner.Runner, error) { return rn, nil })
	return gateway.New(registry)
}

func runConsumer(t *testing.T, broker *fakeBroker, handler Handler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	broker.cancel = cancel

	consumer := NewConsumer(broker, "lint-stream", "lint-group", handler, discardLogger())
	if consumer == nil {
		t.Fatalf("expected consumer")
	}
	if err := consumer.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestMalformedMessageDoesNotStopTheLoop(t *testing.T) {
	assets := &fakeAssets{assets: map[string]string{"snippets/s-1": "let my_var = 1;"}}
	states := &fakeStateReporter{}
	worker := NewLintWorker(engineconfig.NewResolver(), newGateway(stubRunner{
		findings: []runner.LintError{{Message: "identifier not in camelCase", Line: 1, Column: 5}},
	}), assets, states, discardLogger())
	if worker == nil {
		t.Fatalf("expected worker")
	}

	broker := &fakeBroker{batches: [][]Message{{
		{ID: "1-0", Body: []byte("this is not json")},
		{ID: "2-0", Body: []byte(lintTriggerJSON)},
	}}}
	runConsumer(t, broker, worker.Handle)

	if len(states.calls) != 1 {
		t.Fatalf("state calls = %d, want exactly 1", len(states.calls))
	}
	if states.calls[0].SnippetID != "s-1" || states.calls[0].State != stateclient.NonCompliant {
		t.Fatalf("state call = %+v", states.calls[0])
	}
	if len(broker.acks) != 1 || broker.acks[0] != "2-0" {
		t.Fatalf("acks = %v, want only the valid message acked", broker.acks)
	}
}

func TestCleanLintReportsCompliant(t *testing.T) {
	assets := &fakeAssets{assets: map[string]string{"snippets/s-1": "let myVar: number = 1;"}}
	states := &fakeStateReporter{}
	worker := NewLintWorker(engineconfig.NewResolver(), newGateway(stubRunner{}), assets, states, discardLogger())

	broker := &fakeBroker{batches: [][]Message{{{ID: "1-0", Body: []byte(lintTriggerJSON)}}}}
	runConsumer(t, broker, worker.Handle)

	if len(states.calls) != 1 || states.calls[0].State != stateclient.Compliant {
		t.Fatalf("state calls = %+v, want one COMPLIANT", states.calls)
	}
}

func TestFailedStatePushStillAcks(t *testing.T) {
	assets := &fakeAssets{assets: map[string]string{"snippets/s-1": "println(1);"}}
	states := &fakeStateReporter{err: errors.New("manager unavailable")}
	worker := NewLintWorker(engineconfig.NewResolver(), newGateway(stubRunner{}), assets, states, discardLogger())

	broker := &fakeBroker{batches: [][]Message{{{ID: "1-0", Body: []byte(lintTriggerJSON)}}}}
	runConsumer(t, broker, worker.Handle)

	if len(broker.acks) != 1 {
		t.Fatalf("acks = %v, want the message acked despite the failed push", broker.acks)
	}
}

func TestMissingAssetLeavesMessagePending(t *testing.T) {
	states := &fakeStateReporter{}
	worker := NewLintWorker(engineconfig.NewResolver(), newGateway(stubRunner{}), &fakeAssets{}, states, discardLogger())

	broker := &fakeBroker{batches: [][]Message{{{ID: "1-0", Body: []byte(lintTriggerJSON)}}}}
	runConsumer(t, broker, worker.Handle)

	if len(broker.acks) != 0 {
		t.Fatalf("acks = %v, want none", broker.acks)
	}
	if len(states.calls) != 0 {
		t.Fatalf("state calls = %+v, want none", states.calls)
	}
}

func TestFormatTriggerWritesBack(t *testing.T) {
	assets := &fakeAssets{assets: map[string]string{"snippets/f-1": "let a:number=1;"}}
	worker := NewFormatWorker(engineconfig.NewResolver(), newGateway(stubRunner{formatted: "let a: number = 1;"}), assets, discardLogger())
	if worker == nil {
		t.Fatalf("expected worker")
	}

	body := []byte(`{"language":"austral","version":"V1","config":{},"assetPath":"snippets/f-1"}`)
	broker := &fakeBroker{batches: [][]Message{{{ID: "1-0", Body: body}}}}
	runConsumer(t, broker, worker.Handle)

	if assets.writes["snippets/f-1"] != "let a: number = 1;" {
		t.Fatalf("written = %q", assets.writes["snippets/f-1"])
	}
	if len(broker.acks) != 1 {
		t.Fatalf("acks = %v", broker.acks)
	}
}
