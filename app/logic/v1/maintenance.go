package v1

import (
	"context"
	"time"

	"github.com/rowdybard/banterbox/app/core"
	"github.com/rowdybard/banterbox/app/store"
	"github.com/rowdybard/banterbox/pkg/errors"
	"github.com/rowdybard/banterbox/pkg/types"
)

// MaintenanceLogic owns the expiry sweep and the cheap stats view. The sweep
// removes exactly the rows whose expires_at has passed at call time; racing
// inserts are unaffected.
type MaintenanceLogic struct {
	ctx       context.Context
	events    store.ContextEventStore
	responses store.PriorResponseStore
	metrics   *core.Metrics
	now       func() time.Time
}

func NewMaintenanceLogic(ctx context.Context, core *core.Core) *MaintenanceLogic {
	return &MaintenanceLogic{
		ctx:       ctx,
		events:    core.Store().ContextEventStore(),
		responses: core.Store().PriorResponseStore(),
		metrics:   core.Metrics(),
		now:       time.Now,
	}
}

func NewMaintenanceWithDeps(ctx context.Context, events store.ContextEventStore, responses store.PriorResponseStore, now func() time.Time) *MaintenanceLogic {
	return &MaintenanceLogic{
		ctx:       ctx,
		events:    events,
		responses: responses,
		now:       now,
	}
}

// SweepExpired deletes expired rows of both record kinds and returns the
// total removed. Repeated calls are idempotent.
func (l *MaintenanceLogic) SweepExpired() (int64, error) {
	now := l.now().Unix()

	removedEvents, err := l.events.DeleteExpired(l.ctx, now)
	if err != nil {
		return 0, errors.New("MaintenanceLogic.SweepExpired.ContextEventStore.DeleteExpired", "failed to sweep expired events", err)
	}

	removedResponses, err := l.responses.DeleteExpired(l.ctx, now)
	if err != nil {
		return removedEvents, errors.New("MaintenanceLogic.SweepExpired.PriorResponseStore.DeleteExpired", "failed to sweep expired responses", err)
	}

	if l.metrics != nil {
		l.metrics.SweepRemovedAdd("context_event", float64(removedEvents))
		l.metrics.SweepRemovedAdd("prior_response", float64(removedResponses))
	}

	return removedEvents + removedResponses, nil
}

// Stats reports the live row counts for one owner.
func (l *MaintenanceLogic) Stats(ownerID string) (*types.MemoryStats, error) {
	now := l.now()

	liveEvents, err := l.events.Total(l.ctx, ownerID, now.Unix())
	if err != nil {
		return nil, errors.New("MaintenanceLogic.Stats.ContextEventStore.Total", "failed to count events", err)
	}

	liveResponses, err := l.responses.Total(l.ctx, ownerID, now.Unix())
	if err != nil {
		return nil, errors.New("MaintenanceLogic.Stats.PriorResponseStore.Total", "failed to count responses", err)
	}

	return &types.MemoryStats{
		OwnerID:        ownerID,
		LiveEvents:     liveEvents,
		LiveResponses:  liveResponses,
		CollectedUnixS: now.Unix(),
	}, nil
}
