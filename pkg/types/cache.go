package types

import (
	"context"
	"time"
)

// Cache is the minimal cache surface the core needs. Backed by redis in
// production, a no-op when redis is not configured.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
}
