// Package stateclient reports snippet compliance verdicts to the
// snippet-state service. State is derived, never stored locally; the
// remote PUT is idempotent per snippet.
package stateclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
)

// State is the binary compliance verdict derived from linting.
type State string

const (
	Compliant    State = "COMPLIANT"
	NonCompliant State = "NON_COMPLIANT"
)

type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func New(baseURL string, client *http.Client, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("state service base url is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: baseURL, client: client, logger: logger}, nil
}

type setStateRequest struct {
	SnippetID string `json:"snippetId"`
	State     State  `json:"state"`
}

// SetComplianceState idempotently sets the snippet's compliance state.
func (c *Client) SetComplianceState(ctx context.Context, snippetID string, state State) error {
	body, err := json.Marshal(setStateRequest{SnippetID: snippetID, State: state})
	if err != nil {
		return fmt.Errorf("encode state request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/snippets/compiling-state", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build state request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("setting snippet state", "snippet_id", snippetID, "state", state)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: set snippet state: %v", fault.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	default:
		return fmt.Errorf("%w: state service returned %d for snippet %s", fault.ErrUpstream, resp.StatusCode, snippetID)
	}
}
