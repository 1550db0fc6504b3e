// Package httpapi exposes replication over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/replog"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
)

// maxRequestBodySize caps a trigger request.
const maxRequestBodySize = 1 << 20

// Replicator runs one replication action.
type Replicator interface {
	Replicate(ctx context.Context, t domain.ActionType, path string) (domain.ReplicationResult, *replog.Log, error)
}

// Handler routes the trigger endpoints.
type Handler struct {
	replicator Replicator
	metrics    http.Handler
	mux        *http.ServeMux
}

// NewHandler creates the handler. metrics may be nil to disable /metrics.
func NewHandler(replicator Replicator, metrics http.Handler) *Handler {
	h := &Handler{replicator: replicator, metrics: metrics, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /replicate", h.replicate)
	h.mux.HandleFunc("GET /healthz", h.health)
	if metrics != nil {
		h.mux.Handle("GET /metrics", metrics)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) replicate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ReplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if req.Action == "" {
		req.Action = string(domain.ActionActivate)
	}
	action, err := domain.ParseActionType(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, log, err := h.replicator.Replicate(r.Context(), action, req.Path)
	resp := ReplicateResponse{
		Path:   req.Path,
		Action: string(action),
		Result: res,
		Log:    entries(log),
	}
	if err != nil {
		logger.Error("httpapi: replicate %s %s: %v", action, req.Path, err)
		resp.Error = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedAction), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingAPIType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoInstance):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func entries(log *replog.Log) []LogEntry {
	if log == nil {
		return nil
	}
	all := log.Entries()
	out := make([]LogEntry, len(all))
	for i, e := range all {
		out[i] = LogEntry{Time: e.Time.UTC().Format(time.RFC3339Nano), Level: string(e.Level), Message: e.Message}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("httpapi: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
