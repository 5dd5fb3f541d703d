package assetstore

import (
	"context"
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

func TestGetReturnsAssetBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/snippets/abc" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, "println(1);")
	}))
	defer srv.Close()

	store, err := NewHTTPStore(srv.URL, srv.Client(), discardLogger())
	if err != nil {
		t.Fatalf("NewHTTPStore: %v", err)
	}
	code, err := store.Get(context.Background(), "snippets/abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if code != "println(1);" {
		t.Fatalf("code = %q", code)
	}
}

func TestGetMissingAssetIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store, err := NewHTTPStore(srv.URL, srv.Client(), discardLogger())
	if err != nil {
		t.Fatalf("NewHTTPStore: %v", err)
	}
	_, err = store.Get(context.Background(), "snippets/missing")
	if !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store, err := NewHTTPStore(srv.URL, srv.Client(), discardLogger())
	if err != nil {
		t.Fatalf("NewHTTPStore: %v", err)
	}
	_, err = store.Get(context.Background(), "snippets/abc")
	if !errors.Is(err, fault.ErrUpstream) {
		t.Fatalf("expected upstream fault, got %v", err)
	}
}

func TestPutOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		outcome WriteOutcome
		wantErr bool
	}{
		{"created", http.StatusCreated, Created, false},
		{"updated", http.StatusOK, Updated, false},
		{"unexpected status", http.StatusConflict, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut {
					t.Errorf("method = %s", r.Method)
				}
				body, _ := io.ReadAll(r.Body)
				gotBody = string(body)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			store, err := NewHTTPStore(srv.URL, srv.Client(), discardLogger())
			if err != nil {
				t.Fatalf("NewHTTPStore: %v", err)
			}
			outcome, err := store.Put(context.Background(), "snippets/abc", "formatted;")
			if tt.wantErr {
				if !errors.Is(err, fault.ErrUpstream) {
					t.Fatalf("expected upstream fault, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			if outcome != tt.outcome {
				t.Fatalf("outcome = %q, want %q", outcome, tt.outcome)
			}
			if gotBody != "formatted;" {
				t.Fatalf("body = %q", gotBody)
			}
		})
	}
}
