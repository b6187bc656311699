package store

import (
	"context"

	"github.com/rowdybard/banterbox/pkg/sqlstore"
	"github.com/rowdybard/banterbox/pkg/types"
)

// ContextEventStore is the generation-context half of the event store.
// Records carry caller-supplied created_at/expires_at; TTL is interpreted by
// the core, not the storage engine.
type ContextEventStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data *types.ContextEvent) error
	GetOne(ctx context.Context, id string) (*types.ContextEvent, error)
	// ListRecent returns unexpired rows ordered newest-first.
	ListRecent(ctx context.Context, opts types.ListContextEventOptions, limit uint64) ([]*types.ContextEvent, error)
	// AttachResponse fills response_text on the matching row.
	AttachResponse(ctx context.Context, id, responseText string) error
	// DeleteExpired removes rows whose expires_at has passed and returns the
	// count removed.
	DeleteExpired(ctx context.Context, now int64) (int64, error)
	Total(ctx context.Context, ownerID string, activeAt int64) (int64, error)
}

// PriorResponseStore holds already-sent responses for self-reference
// detection. Rows are insert-only until expiry.
type PriorResponseStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data *types.PriorResponse) error
	ListRecent(ctx context.Context, opts types.ListPriorResponseOptions, limit uint64) ([]*types.PriorResponse, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
	Total(ctx context.Context, ownerID string, activeAt int64) (int64, error)
}
