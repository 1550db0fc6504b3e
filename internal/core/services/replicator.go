package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driving"
)

// Ensure Replicator implements the interface.
var _ driving.Replicator = (*Replicator)(nil)

// Replicator runs build then deliver for one action and records the run.
type Replicator struct {
	builder   driving.ContentBuilder
	transport driving.TransportHandler
	instances driving.InstanceRegistry
	history   driven.HistoryStore
	now       func() time.Time
}

// NewReplicator creates a replicator. instances and history may be nil.
func NewReplicator(
	builder driving.ContentBuilder,
	transport driving.TransportHandler,
	instances driving.InstanceRegistry,
	history driven.HistoryStore,
) *Replicator {
	return &Replicator{
		builder:   builder,
		transport: transport,
		instances: instances,
		history:   history,
		now:       time.Now,
	}
}

// Replicate builds the content for action and delivers it.
func (r *Replicator) Replicate(
	ctx context.Context,
	action domain.ReplicationAction,
	log driven.ReplicationLog,
) (domain.ReplicationResult, error) {
	if action.Time.IsZero() {
		action.Time = r.now()
	}
	rec := domain.HistoryRecord{
		ID:         uuid.NewString(),
		Path:       action.Path,
		Action:     action.Type,
		InstanceID: r.instanceID(action.Agent),
		StartedAt:  action.Time,
	}

	// 1. Build the delivery artifact
	artifact, err := r.builder.Build(ctx, action, log)
	if err != nil {
		r.record(ctx, rec, domain.ReplicationResult{}, err, log)
		return domain.ReplicationResult{}, fmt.Errorf("build content: %w", err)
	}
	defer func() {
		if err := artifact.Release(); err != nil && log != nil {
			log.Warn("Could not delete replication content %s: %v", artifact.Path, err)
		}
	}()

	// 2. Deliver it
	res, err := r.transport.Deliver(ctx, action, artifact, log)
	r.record(ctx, rec, res, err, log)
	if err != nil {
		return res, fmt.Errorf("deliver content: %w", err)
	}
	return res, nil
}

func (r *Replicator) instanceID(agent *domain.AgentConfig) string {
	if r.instances == nil || agent == nil {
		return ""
	}
	c, err := r.instances.ClientForAgent(agent)
	if err != nil {
		return r.instances.InstanceIDFromAgent(agent)
	}
	return c.ID()
}

func (r *Replicator) record(
	ctx context.Context,
	rec domain.HistoryRecord,
	res domain.ReplicationResult,
	runErr error,
	log driven.ReplicationLog,
) {
	if r.history == nil {
		return
	}
	rec.State = res.State
	rec.Success = res.Success && runErr == nil
	rec.StatusCode = res.StatusCode
	rec.Message = res.Message
	if runErr != nil {
		rec.Message = runErr.Error()
	}
	rec.FinishedAt = r.now()
	if err := r.history.Save(ctx, rec); err != nil && log != nil {
		log.Warn("Could not record replication history: %v", err)
	}
}
