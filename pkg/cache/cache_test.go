package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowdybard/banterbox/pkg/cache"
	"github.com/rowdybard/banterbox/pkg/types"
)

func TestEmptyCache(t *testing.T) {
	var c types.Cache = &cache.EmptyCache{}
	ctx := context.Background()

	require.NoError(t, c.SetEx(ctx, "k", "v", time.Minute))

	// writes are dropped, reads always miss
	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)

	assert.NoError(t, c.Expire(ctx, "k", time.Minute))
}
