// Package remote implements the runner contract against the engine
// daemon's HTTP API. One Runner is bound to one version; the gateway
// constructs a fresh instance per call through the registry.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
	"github.com/austral-labs/snippet-engine-go/internal/language"
	"github.com/austral-labs/snippet-engine-go/internal/runner"
)

type Runner struct {
	baseURL string
	version language.Version
	client  *http.Client
}

// Factory returns a registry factory producing runners bound to the
// given version of the engine daemon at baseURL.
func Factory(baseURL string, version language.Version, client *http.Client) runner.Factory {
	return func() (runner.Runner, error) {
		return New(baseURL, version, client)
	}
}

func New(baseURL string, version language.Version, client *http.Client) (*Runner, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("engine base url is required")
	}
	if client == nil {
		client = &http.Client{Transport: newTransport()}
	}
	return &Runner{baseURL: baseURL, version: version, client: client}, nil
}

// NewHTTPClient builds a client suitable for sharing across the runner
// instances the registry produces, so connections are pooled.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: newTransport()}
}

type runRequest struct {
	Code   string   `json:"code"`
	Inputs []string `json:"inputs,omitempty"`
}

type runResponse struct {
	Output []string `json:"output"`
	Errors []string `json:"errors"`
}

func (r *Runner) Run(ctx context.Context, code string, inputs runner.InputSource) (runner.RunResult, error) {
	values, err := drain(inputs)
	if err != nil {
		return runner.RunResult{}, err
	}
	var resp runResponse
	if err := r.post(ctx, "run", runRequest{Code: code, Inputs: values}, &resp); err != nil {
		return runner.RunResult{}, err
	}
	return runner.RunResult{Output: resp.Output, Errors: resp.Errors}, nil
}

type formatRequest struct {
	Code    string `json:"code"`
	Options any    `json:"options"`
}

type formatResponse struct {
	Formatted string `json:"formatted"`
}

func (r *Runner) Format(ctx context.Context, code string, options any) (string, error) {
	var resp formatResponse
	if err := r.post(ctx, "format", formatRequest{Code: code, Options: options}, &resp); err != nil {
		return "", err
	}
	return resp.Formatted, nil
}

type lintRequest struct {
	Code    string `json:"code"`
	Options any    `json:"options"`
}

type lintResponse struct {
	LintErrors []runner.LintError `json:"lintErrors"`
}

func (r *Runner) Lint(ctx context.Context, code string, options any) ([]runner.LintError, error) {
	var resp lintResponse
	if err := r.post(ctx, "lint", lintRequest{Code: code, Options: options}, &resp); err != nil {
		return nil, err
	}
	return resp.LintErrors, nil
}

func (r *Runner) post(ctx context.Context, op string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}
	url := fmt.Sprintf("%s/%s/%s", r.baseURL, strings.ToLower(r.version.String()), op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: engine %s call: %v", fault.ErrUpstream, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read engine %s response: %v", fault.ErrUpstream, op, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: engine rejected %s: %s", fault.ErrBadRequest, op, engineMessage(raw))
	default:
		return fmt.Errorf("%w: engine %s returned %d", fault.ErrUpstream, op, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode engine %s response: %v", fault.ErrUpstream, op, err)
	}
	return nil
}

// drain consumes the source in read order; the remote contract carries
// input values as an ordered list consumed engine-side.
func drain(inputs runner.InputSource) ([]string, error) {
	if inputs == nil {
		return nil, nil
	}
	var values []string
	for {
		v, err := inputs.Next()
		if errors.Is(err, runner.ErrNoMoreInputs) {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read input value: %w", err)
		}
		values = append(values, v)
	}
}

type engineError struct {
	Message string `json:"message"`
}

func engineMessage(raw []byte) string {
	var e engineError
	if err := json.Unmarshal(raw, &e); err == nil && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "no message available"
	}
	return msg
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
