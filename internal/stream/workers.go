package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/austral-labs/snippet-engine-go/internal/assetstore"
	"github.com/austral-labs/snippet-engine-go/internal/engineconfig"
	"github.com/austral-labs/snippet-engine-go/internal/gateway"
	"github.com/austral-labs/snippet-engine-go/internal/language"
	"github.com/austral-labs/snippet-engine-go/internal/stateclient"
)

// StateReporter pushes a snippet's compliance verdict to the
// snippet-state service.
type StateReporter interface {
	SetComplianceState(ctx context.Context, snippetID string, state stateclient.State) error
}

// LintWorker handles lint triggers: resolve config, fetch code, lint,
// and report the derived compliance state keyed by snippet id.
type LintWorker struct {
	resolver *engineconfig.Resolver
	gateway  *gateway.Gateway
	assets   assetstore.Store
	states   StateReporter
	logger   *slog.Logger
}

func NewLintWorker(resolver *engineconfig.Resolver, gw *gateway.Gateway, assets assetstore.Store, states StateReporter, logger *slog.Logger) *LintWorker {
	if resolver == nil || gw == nil || assets == nil || states == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LintWorker{resolver: resolver, gateway: gw, assets: assets, states: states, logger: logger}
}

func (w *LintWorker) Handle(ctx context.Context, msg Message) error {
	trig, err := DecodeLintTrigger(msg.Body)
	if err != nil {
		return err
	}
	version, err := language.Parse(trig.Version)
	if err != nil {
		return err
	}
	options, err := w.resolver.Resolve(version, trig.Config, engineconfig.KindLint)
	if err != nil {
		return err
	}
	code, err := w.assets.Get(ctx, trig.AssetPath)
	if err != nil {
		return err
	}
	findings, err := w.gateway.Lint(ctx, version, code, options)
	if err != nil {
		return err
	}

	state := stateclient.Compliant
	if len(findings) > 0 {
		state = stateclient.NonCompliant
	}

	// The message acks even when the push fails; the push is
	// at-most-once while the message itself is at-least-once.
	if err := w.states.SetComplianceState(ctx, trig.SnippetID, state); err != nil {
		w.logger.Error("state push failed", "snippet_id", trig.SnippetID, "state", state, "error", err)
		return nil
	}
	w.logger.Info("snippet linted", "snippet_id", trig.SnippetID, "state", state, "findings", len(findings))
	return nil
}

// FormatWorker handles format triggers: resolve config, fetch code,
// format, and write the result back to the asset store at the same path.
type FormatWorker struct {
	resolver *engineconfig.Resolver
	gateway  *gateway.Gateway
	assets   assetstore.Store
	logger   *slog.Logger
}

func NewFormatWorker(resolver *engineconfig.Resolver, gw *gateway.Gateway, assets assetstore.Store, logger *slog.Logger) *FormatWorker {
	if resolver == nil || gw == nil || assets == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FormatWorker{resolver: resolver, gateway: gw, assets: assets, logger: logger}
}

func (w *FormatWorker) Handle(ctx context.Context, msg Message) error {
	trig, err := DecodeFormatTrigger(msg.Body)
	if err != nil {
		return err
	}
	version, err := language.Parse(trig.Version)
	if err != nil {
		return err
	}
	options, err := w.resolver.Resolve(version, trig.Config, engineconfig.KindFormat)
	if err != nil {
		return err
	}
	code, err := w.assets.Get(ctx, trig.AssetPath)
	if err != nil {
		return err
	}
	formatted, err := w.gateway.Format(ctx, version, code, options)
	if err != nil {
		return err
	}
	outcome, err := w.assets.Put(ctx, trig.AssetPath, formatted)
	if err != nil {
		return fmt.Errorf("write formatted asset: %w", err)
	}
	w.logger.Info("snippet formatted", "path", trig.AssetPath, "outcome", outcome)
	return nil
}
