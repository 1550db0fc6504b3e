package httpapi

import "github.com/custodia-labs/sfcc-replicator/internal/core/domain"

// ReplicateRequest triggers one action. Action defaults to ACTIVATE.
type ReplicateRequest struct {
	Path   string `json:"path"`
	Action string `json:"action,omitempty"`
}

type ReplicateResponse struct {
	Path   string                   `json:"path"`
	Action string                   `json:"action"`
	Result domain.ReplicationResult `json:"result"`
	Log    []LogEntry               `json:"log,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
