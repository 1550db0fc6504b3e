package driving

import (
	"context"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// ContentBuilder turns a replication action into replication content.
type ContentBuilder interface {
	// Build runs the builder chain for the action's resource. A void
	// artifact means there is nothing to replicate.
	Build(ctx context.Context, action domain.ReplicationAction, log driven.ReplicationLog) (*domain.Artifact, error)

	// Document runs the builder chain and returns the document without packaging it.
	Document(ctx context.Context, action domain.ReplicationAction, log driven.ReplicationLog) (*domain.Delivery, error)
}

// TransportHandler delivers replication content to a commerce backend.
type TransportHandler interface {
	// Deliver dispatches the artifact to the matching transport plugins.
	Deliver(ctx context.Context, action domain.ReplicationAction, content *domain.Artifact, log driven.ReplicationLog) (domain.ReplicationResult, error)
}

// Replicator runs the whole build and deliver sequence for an action.
type Replicator interface {
	Replicate(ctx context.Context, action domain.ReplicationAction, log driven.ReplicationLog) (domain.ReplicationResult, error)
}
