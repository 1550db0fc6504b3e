package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/replog"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

// Action returns a replication action for path under the configured agent.
func (r *Runtime) Action(t domain.ActionType, path string) domain.ReplicationAction {
	return domain.ReplicationAction{
		Type:  t,
		Path:  path,
		Agent: r.Agent(),
		Time:  time.Now().UTC(),
	}
}

// Replicate builds and delivers path. The returned log holds every entry
// the run recorded, also when err is set.
func (r *Runtime) Replicate(ctx context.Context, t domain.ActionType, path string) (domain.ReplicationResult, *replog.Log, error) {
	log := replog.New(uuid.NewString()[:8])
	res, err := r.Replicator.Replicate(ctx, r.Action(t, path), log)
	return res, log, err
}

// Document runs only the builder chain for path.
func (r *Runtime) Document(ctx context.Context, t domain.ActionType, path string) (*domain.Delivery, *replog.Log, error) {
	log := replog.New(uuid.NewString()[:8])
	d, err := r.Builder.Document(ctx, r.Action(t, path), log)
	return d, log, err
}
