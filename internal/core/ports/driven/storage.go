package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

// ArtifactPackager turns a serialised delivery file into replication content.
type ArtifactPackager interface {
	// Package takes ownership of file. On error the caller still owns it.
	Package(ctx context.Context, contentType, file string) (*domain.Artifact, error)
}

// HistoryStore persists replication runs.
type HistoryStore interface {
	Save(ctx context.Context, rec domain.HistoryRecord) error

	// Get returns a record by id or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.HistoryRecord, error)

	// List returns the most recent records first.
	List(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
}

// MetricsSink receives pipeline measurements.
type MetricsSink interface {
	DeliveryCompleted(apiType, contentType string, state domain.DeliveryState, success bool)
	ExchangeCompleted(method string, statusCode int, duration time.Duration)
	TokenFetched(success bool)
}
