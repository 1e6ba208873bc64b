package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	require.NoError(t, Init(context.Background(), "redis://"+mr.Addr()))
	t.Cleanup(func() { Close() })
	return mr
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, Init(ctx, ""))
	assert.False(t, Enabled())

	_, err := Get(ctx, "post_snapshot:1")
	assert.ErrorIs(t, err, errNotInitialized)
	assert.ErrorIs(t, Set(ctx, "post_snapshot:1", []byte("{}"), time.Minute), errNotInitialized)

	// Eviction is best effort and never fails when caching is off.
	assert.NoError(t, Delete(ctx, "post_snapshot:1"))
	assert.NoError(t, DeleteByPrefix(ctx, "post_snapshot:"))
	assert.NoError(t, Close())
}

func TestInitRejectsBadURL(t *testing.T) {
	err := Init(context.Background(), "http://not-redis")
	assert.Error(t, err)
	assert.False(t, Enabled())
}

func TestInitUnreachableServerLeavesCacheDisabled(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	err := Init(context.Background(), "redis://"+addr)
	assert.Error(t, err)
	assert.False(t, Enabled())
}

func TestSetAndGet(t *testing.T) {
	mr := startRedis(t)
	ctx := context.Background()
	assert.True(t, Enabled())

	require.NoError(t, Set(ctx, "post_snapshot:1", []byte(`{"id":1}`), 5*time.Minute))

	got, err := Get(ctx, "post_snapshot:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, got)
	assert.Equal(t, 5*time.Minute, mr.TTL("post_snapshot:1"))

	got, err = Get(ctx, "post_snapshot:2")
	require.NoError(t, err)
	assert.Empty(t, got)

	mr.FastForward(5 * time.Minute)
	got, err = Get(ctx, "post_snapshot:1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDelete(t *testing.T) {
	mr := startRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("post_snapshot:1", "{}"))
	require.NoError(t, mr.Set("post_snapshot:2", "{}"))

	require.NoError(t, Delete(ctx, "post_snapshot:1"))
	assert.False(t, mr.Exists("post_snapshot:1"))
	assert.True(t, mr.Exists("post_snapshot:2"))
	assert.NoError(t, Delete(ctx))
}

func TestDeleteByPrefixCoversEveryScanPage(t *testing.T) {
	mr := startRedis(t)
	ctx := context.Background()
	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("post_snapshot:%d", i), "{}"))
	}
	require.NoError(t, mr.Set("home_summary:1", "{}"))

	require.NoError(t, DeleteByPrefix(ctx, "post_snapshot:"))
	assert.Equal(t, []string{"home_summary:1"}, mr.Keys())
}
