package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	type tree struct {
		Names []string `json:"names"`
	}

	require.NoError(t, c.Set(ctx, "category:tree", tree{Names: []string{"a", "b"}}, time.Minute))
	require.NoError(t, c.Set(ctx, "category:slug:a", "x", 0))
	require.NoError(t, c.Set(ctx, "brand:list", "y", 0))

	var got tree
	found, err := c.Get(ctx, "category:tree", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got.Names)

	require.NoError(t, c.DeletePattern(ctx, "category:*"))

	found, err = c.Get(ctx, "category:tree", &got)
	require.NoError(t, err)
	assert.False(t, found)

	var s string
	found, err = c.Get(ctx, "brand:list", &s)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "y", s)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 1, time.Second))

	var v int
	found, _ := c.Get(ctx, "k", &v)
	assert.True(t, found)

	now = now.Add(2 * time.Second)
	found, _ = c.Get(ctx, "k", &v)
	assert.False(t, found)
}
