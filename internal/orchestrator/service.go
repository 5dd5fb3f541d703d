// Package orchestrator is the façade behind the synchronous request
// handlers: it fetches snippet text, resolves versioned configuration,
// calls the engine gateway and, for tests, runs output verification.
// It is stateless and safe for concurrent use.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/austral-labs/snippet-engine-go/internal/assetstore"
	"github.com/austral-labs/snippet-engine-go/internal/engineconfig"
	"github.com/austral-labs/snippet-engine-go/internal/fault"
	"github.com/austral-labs/snippet-engine-go/internal/gateway"
	"github.com/austral-labs/snippet-engine-go/internal/language"
	"github.com/austral-labs/snippet-engine-go/internal/runner"
	"github.com/austral-labs/snippet-engine-go/internal/verify"
)

type Service struct {
	assets   assetstore.Store
	gateway  *gateway.Gateway
	resolver *engineconfig.Resolver
	logger   *slog.Logger
}

func New(assets assetstore.Store, gw *gateway.Gateway, resolver *engineconfig.Resolver, logger *slog.Logger) *Service {
	if assets == nil || gw == nil || resolver == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{assets: assets, gateway: gw, resolver: resolver, logger: logger}
}

// Request carries one analysis request. Exactly one of AssetRef and
// Code is populated; callers choose reference or inline mode by which
// field they fill.
type Request struct {
	Language        string
	Version         language.Version
	AssetRef        string
	Code            string
	Config          json.RawMessage
	Inputs          []string
	ExpectedOutputs []string
}

// Parse returns the engine's parse error list for the snippet.
func (s *Service) Parse(ctx context.Context, req Request) ([]string, error) {
	code, err := s.snippetCode(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.gateway.Parse(ctx, req.Version, code)
}

// Execute runs the snippet with the request's ordered input values.
func (s *Service) Execute(ctx context.Context, req Request) (runner.RunResult, error) {
	code, err := s.snippetCode(ctx, req)
	if err != nil {
		return runner.RunResult{}, err
	}
	return s.gateway.Execute(ctx, req.Version, code, req.Inputs)
}

// Format returns the formatted snippet. In reference mode the formatted
// text is additionally written back to the asset store at the same
// path. The read-modify-write is not guarded; a concurrent format of
// the same path can overwrite this one.
func (s *Service) Format(ctx context.Context, req Request) (string, error) {
	options, err := s.resolver.Resolve(req.Version, req.Config, engineconfig.KindFormat)
	if err != nil {
		return "", err
	}
	code, err := s.snippetCode(ctx, req)
	if err != nil {
		return "", err
	}
	formatted, err := s.gateway.Format(ctx, req.Version, code, options)
	if err != nil {
		return "", err
	}
	if req.AssetRef != "" {
		outcome, err := s.assets.Put(ctx, req.AssetRef, formatted)
		if err != nil {
			return "", fmt.Errorf("write formatted asset: %w", err)
		}
		s.logger.Info("formatted asset written", "path", req.AssetRef, "outcome", outcome)
	}
	return formatted, nil
}

// Lint returns the analyzer findings for the snippet.
func (s *Service) Lint(ctx context.Context, req Request) ([]runner.LintError, error) {
	options, err := s.resolver.Resolve(req.Version, req.Config, engineconfig.KindLint)
	if err != nil {
		return nil, err
	}
	code, err := s.snippetCode(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.gateway.Lint(ctx, req.Version, code, options)
}

// Test runs the snippet with the supplied inputs and verifies its
// output against the expected lines.
func (s *Service) Test(ctx context.Context, req Request) (verify.Verdict, error) {
	code, err := s.snippetCode(ctx, req)
	if err != nil {
		return verify.Verdict{}, err
	}
	res, err := s.gateway.Execute(ctx, req.Version, code, req.Inputs)
	if err != nil {
		return verify.Verdict{}, err
	}
	return verify.Evaluate(req.ExpectedOutputs, res.Output, res.Errors, code), nil
}

func (s *Service) snippetCode(ctx context.Context, req Request) (string, error) {
	switch {
	case req.AssetRef != "" && req.Code != "":
		return "", fmt.Errorf("%w: request carries both code and asset reference", fault.ErrBadRequest)
	case req.AssetRef != "":
		return s.assets.Get(ctx, req.AssetRef)
	case req.Code != "":
		return req.Code, nil
	default:
		return "", fmt.Errorf("%w: request carries neither code nor asset reference", fault.ErrBadRequest)
	}
}
