package stateclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSetComplianceStateSendsExpectedShape(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(srv.URL, srv.Client(), discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.SetComplianceState(context.Background(), "snippet-1", NonCompliant); err != nil {
		t.Fatalf("SetComplianceState: %v", err)
	}

	if gotMethod != http.MethodPut || gotPath != "/snippets/compiling-state" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody["snippetId"] != "snippet-1" || gotBody["state"] != "NON_COMPLIANT" {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestSetComplianceStateAcceptsCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := New(srv.URL, srv.Client(), discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.SetComplianceState(context.Background(), "snippet-1", Compliant); err != nil {
		t.Fatalf("SetComplianceState: %v", err)
	}
}

func TestSetComplianceStateNon2xxIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := New(srv.URL, srv.Client(), discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = client.SetComplianceState(context.Background(), "snippet-1", Compliant)
	if !errors.Is(err, fault.ErrUpstream) {
		t.Fatalf("expected upstream fault, got %v", err)
	}
}
