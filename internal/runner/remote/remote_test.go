package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
	"github.com/austral-labs/snippet-engine-go/internal/language"
	"github.com/austral-labs/snippet-engine-go/internal/runner"
)

func TestRunSendsInputsInOrder(t *testing.T) {
	var got runRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/run" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(runResponse{Output: []string{"hello"}})
	}))
	defer srv.Close()

	rn, err := New(srv.URL, language.V2, srv.Client())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := rn.Run(context.Background(), "println(readInput(x));", runner.NewQueueSource([]string{"a", "b"}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Output) != 1 || res.Output[0] != "hello" {
		t.Fatalf("output = %v", res.Output)
	}
	if len(got.Inputs) != 2 || got.Inputs[0] != "a" || got.Inputs[1] != "b" {
		t.Fatalf("inputs = %v", got.Inputs)
	}
}

func TestRejectedSnippetIsClientFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "unexpected token"})
	}))
	defer srv.Close()

	rn, err := New(srv.URL, language.V1, srv.Client())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = rn.Format(context.Background(), "let :=", nil)
	if !errors.Is(err, fault.ErrBadRequest) {
		t.Fatalf("expected bad request fault, got %v", err)
	}
}

func TestEngineFailureIsUpstreamFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rn, err := New(srv.URL, language.V1, srv.Client())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = rn.Lint(context.Background(), "println(1);", nil)
	if !errors.Is(err, fault.ErrUpstream) {
		t.Fatalf("expected upstream fault, got %v", err)
	}
}

func TestLintDecodesFindings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(lintResponse{LintErrors: []runner.LintError{
			{Message: "identifier not in camelCase", Line: 2, Column: 5},
		}})
	}))
	defer srv.Close()

	rn, err := New(srv.URL, language.V1, srv.Client())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	findings, err := rn.Lint(context.Background(), "let my_var: number = 1;", nil)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if len(findings) != 1 || findings[0].Line != 2 {
		t.Fatalf("findings = %v", findings)
	}
}
