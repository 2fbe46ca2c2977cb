package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trainlog/trainlog/internal/config"
)

type entry struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

func TestPrefixedCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewPrefixedCache[entry](New(&config.CacheConfig{Type: config.CacheTypeMemory}), config.CacheTypeMemory, "test-")

	_, err := c.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, IsMiss(err))

	require.NoError(t, c.Set(ctx, "k", entry{Text: "hello", Count: 3}))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, entry{Text: "hello", Count: 3}, got)
	assert.Equal(t, config.CacheTypeMemory, c.GetType())

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.True(t, IsMiss(err))
}

func TestPrefixedCache_SharedBackendSeparatesPrefixes(t *testing.T) {
	ctx := context.Background()
	backend := New(nil)
	a := NewPrefixedCache[string](backend, config.CacheTypeMemory, "a-")
	b := NewPrefixedCache[string](backend, config.CacheTypeMemory, "b-")

	require.NoError(t, a.Set(ctx, 1, "from a"))
	_, err := b.Get(ctx, 1)
	assert.True(t, IsMiss(err))

	got, err := a.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "from a", got)
}

func TestPrefixedCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewPrefixedCache[string](New(nil), config.CacheTypeMemory, "ttl-")

	require.NoError(t, c.SetWithTTL(ctx, "short", "value", 20*time.Millisecond))
	_, err := c.Get(ctx, "short")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = c.Get(ctx, "short")
	assert.True(t, IsMiss(err))
}

func TestIsMiss(t *testing.T) {
	assert.False(t, IsMiss(nil))
	assert.False(t, IsMiss(assert.AnError))
}
