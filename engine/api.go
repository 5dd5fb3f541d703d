package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
	"github.com/austral-labs/snippet-engine-go/internal/language"
	"github.com/austral-labs/snippet-engine-go/internal/orchestrator"
	"github.com/austral-labs/snippet-engine-go/internal/verify"
)

type engineAPI struct {
	logger  *slog.Logger
	service *orchestrator.Service
}

func newEngineAPI(logger *slog.Logger, service *orchestrator.Service) *engineAPI {
	return &engineAPI{logger: logger, service: service}
}

func (api *engineAPI) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /engine/parse", api.handleParse)
	mux.HandleFunc("POST /engine/execute", api.handleExecute)
	mux.HandleFunc("POST /engine/format", api.handleFormat)
	mux.HandleFunc("POST /engine/analyze", api.handleAnalyze)
	mux.HandleFunc("POST /engine/test", api.handleTest)
	mux.HandleFunc("GET /engine/ping", api.handlePing)
}

// analysisRequest is the shared request shape. Exactly one of assetPath
// and code must be populated; version is always explicit and required.
type analysisRequest struct {
	Language        string          `json:"language"`
	Version         string          `json:"version"`
	AssetPath       string          `json:"assetPath,omitempty"`
	Code            string          `json:"code,omitempty"`
	Config          json.RawMessage `json:"config,omitempty"`
	VarInputs       []string        `json:"varInputs,omitempty"`
	ExpectedOutputs []string        `json:"expectedOutputs,omitempty"`
}

func (api *engineAPI) decodeRequest(w http.ResponseWriter, r *http.Request) (orchestrator.Request, bool) {
	var req analysisRequest
	if err := decodeJSON(r, &req); err != nil {
		api.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return orchestrator.Request{}, false
	}
	version, err := language.Parse(req.Version)
	if err != nil {
		api.writeError(w, r, http.StatusBadRequest, err.Error())
		return orchestrator.Request{}, false
	}
	return orchestrator.Request{
		Language:        req.Language,
		Version:         version,
		AssetRef:        req.AssetPath,
		Code:            req.Code,
		Config:          req.Config,
		Inputs:          req.VarInputs,
		ExpectedOutputs: req.ExpectedOutputs,
	}, true
}

type parseResponse struct {
	ParseErrors []string `json:"parseErrors"`
}

func (api *engineAPI) handleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := api.decodeRequest(w, r)
	if !ok {
		return
	}
	parseErrors, err := api.service.Parse(r.Context(), req)
	if err != nil {
		api.writeFault(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusAccepted, parseResponse{ParseErrors: emptyIfNil(parseErrors)})
}

type executeResponse struct {
	Output []string `json:"output"`
	Errors []string `json:"errors"`
}

func (api *engineAPI) handleExecute(w http.ResponseWriter, r *http.Request) {
	req, ok := api.decodeRequest(w, r)
	if !ok {
		return
	}
	res, err := api.service.Execute(r.Context(), req)
	if err != nil {
		api.writeFault(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusAccepted, executeResponse{
		Output: emptyIfNil(res.Output),
		Errors: emptyIfNil(res.Errors),
	})
}

func (api *engineAPI) handleFormat(w http.ResponseWriter, r *http.Request) {
	req, ok := api.decodeRequest(w, r)
	if !ok {
		return
	}
	formatted, err := api.service.Format(r.Context(), req)
	if err != nil {
		api.writeFault(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, formatted)
}

type lintErrorBody struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

type analyzeResponse struct {
	LintErrors []lintErrorBody `json:"lintErrors"`
}

func (api *engineAPI) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := api.decodeRequest(w, r)
	if !ok {
		return
	}
	findings, err := api.service.Lint(r.Context(), req)
	if err != nil {
		api.writeFault(w, r, err)
		return
	}
	body := analyzeResponse{LintErrors: make([]lintErrorBody, 0, len(findings))}
	for _, f := range findings {
		body.LintErrors = append(body.LintErrors, lintErrorBody{Message: f.Message, Line: f.Line, Column: f.Column})
	}
	api.writeJSON(w, http.StatusAccepted, body)
}

type testResponse struct {
	Passed   bool `json:"passed"`
	FailedAt *int `json:"failedAt"`
}

func (api *engineAPI) handleTest(w http.ResponseWriter, r *http.Request) {
	req, ok := api.decodeRequest(w, r)
	if !ok {
		return
	}
	verdict, err := api.service.Test(r.Context(), req)
	if err != nil {
		api.writeFault(w, r, err)
		return
	}
	body := testResponse{Passed: verdict.Passed}
	if !verdict.Passed && verdict.FailedAt != verify.LineUnknown {
		line := verdict.FailedAt
		body.FailedAt = &line
	}
	api.writeJSON(w, http.StatusAccepted, body)
}

func (api *engineAPI) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "pong")
}

// writeFault maps the error taxonomy to a status: caller faults keep
// their message, missing assets become 404, everything else is a 500
// with a generic body and the cause logged only.
func (api *engineAPI) writeFault(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fault.ErrNotFound):
		api.writeError(w, r, http.StatusNotFound, err.Error())
	case fault.IsClient(err):
		api.writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		api.logger.Error("request failed", "path", r.URL.Path, "error", err)
		api.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (api *engineAPI) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	api.writeJSON(w, status, map[string]any{
		"error":      message,
		"request_id": r.Header.Get("X-Request-Id"),
	})
}

func (api *engineAPI) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 4<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("multiple JSON values")
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
