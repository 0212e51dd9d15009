// Package api exposes the extraction service to clients: an HTTP API for
// run inspection and ad-hoc extraction, and an MCP server for agent use.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/qamine/internal/qa"
	"github.com/kalambet/qamine/internal/storage"
)

const maxExtractBodySize = 10 << 20 // 10MB

// RunLister is the slice of the storage layer the API reads from.
type RunLister interface {
	ListRuns(limit int) ([]storage.Run, error)
	GetRun(id string) (storage.Run, error)
	ListDocumentResults(runID string) ([]storage.DocumentResult, error)
}

// Processor turns raw text into question–answer records.
type Processor interface {
	Process(ctx context.Context, text string) []qa.Record
}

// Deps holds dependencies for the HTTP handler.
type Deps struct {
	Runs RunLister
	QA   Processor
}

// NewHandler returns the HTTP API handler.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/runs", handleListRuns(deps))
	r.Get("/runs/{id}", handleGetRun(deps))
	r.Get("/runs/{id}/documents", handleRunDocuments(deps))
	r.Post("/extract", handleExtract(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func handleListRuns(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)

		runs, err := deps.Runs.ListRuns(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list runs: %v", err)
			return
		}
		if runs == nil {
			runs = []storage.Run{}
		}
		writeJSON(w, runs)
	}
}

func handleGetRun(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		run, err := deps.Runs.GetRun(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "run not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get run: %v", err)
			return
		}
		writeJSON(w, run)
	}
}

func handleRunDocuments(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if _, err := deps.Runs.GetRun(id); errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "run not found")
			return
		} else if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get run: %v", err)
			return
		}

		docs, err := deps.Runs.ListDocumentResults(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list documents: %v", err)
			return
		}
		if docs == nil {
			docs = []storage.DocumentResult{}
		}
		writeJSON(w, docs)
	}
}

// ExtractRequest is the body for POST /extract: ad-hoc extraction over raw
// text, without touching the run ledger.
type ExtractRequest struct {
	Text string `json:"text"`
}

func handleExtract(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxExtractBodySize)
		defer r.Body.Close()

		var req ExtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}

		records := deps.QA.Process(r.Context(), req.Text)
		if records == nil {
			records = []qa.Record{}
		}
		writeJSON(w, map[string]any{
			"count":   len(records),
			"records": records,
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
