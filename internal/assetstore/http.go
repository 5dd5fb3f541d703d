package assetstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
)

// HTTPStore talks to the asset service over its path-addressed API.
type HTTPStore struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewHTTPStore(baseURL string, client *http.Client, logger *slog.Logger) (*HTTPStore, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("asset service base url is required")
	}
	if client == nil {
		client = &http.Client{Transport: newTransport()}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPStore{baseURL: baseURL, client: client, logger: logger}, nil
}

func (s *HTTPStore) Get(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(path), nil)
	if err != nil {
		return "", fmt.Errorf("build asset request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch asset %s: %v", fault.ErrUpstream, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: asset %s", fault.ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("%w: asset service returned %d for %s", fault.ErrUpstream, resp.StatusCode, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read asset %s: %v", fault.ErrUpstream, path, err)
	}
	return string(body), nil
}

func (s *HTTPStore) Put(ctx context.Context, path, text string) (WriteOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url(path), strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("build asset request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: write asset %s: %v", fault.ErrUpstream, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusCreated:
		s.logger.Info("asset created", "path", path)
		return Created, nil
	case http.StatusOK:
		s.logger.Info("asset updated", "path", path)
		return Updated, nil
	default:
		return "", fmt.Errorf("%w: asset service returned %d writing %s", fault.ErrUpstream, resp.StatusCode, path)
	}
}

func (s *HTTPStore) url(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}

const maxAssetBytes = 4 << 20

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
