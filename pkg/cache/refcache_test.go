package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

type stubLookup struct {
	ids   map[string]string
	calls int
	err   error
}

func (s *stubLookup) ResolveID(ctx context.Context, p common.Predicate) (string, bool, error) {
	s.calls++
	if s.err != nil {
		return "", false, s.err
	}
	id, ok := s.ids[p.Pattern]
	return id, ok, nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRefCacheKey(t *testing.T) {
	c := NewRefCache(nil, "users", time.Minute, &stubLookup{})

	assert.Equal(t, "backoffice:ref:users:email:substring:alice@x", c.Key(common.Substring("email", "Alice@X")))
	assert.Equal(t, "backoffice:ref:users:id:exact:42", c.Key(common.Exact("id", 42)))
}

func TestRefCacheStoresFoundIDs(t *testing.T) {
	mr, client := setup(t)
	next := &stubLookup{ids: map[string]string{"alice": "u1"}}
	c := NewRefCache(client, "users", time.Minute, next)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, found, err := c.ResolveID(ctx, common.Substring("email", "alice"))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "u1", id)
	}
	assert.Equal(t, 1, next.calls)

	key := c.Key(common.Substring("email", "alice"))
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "u1", got)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	_, _, err = c.ResolveID(ctx, common.Substring("email", "alice"))
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestRefCacheSkipsMisses(t *testing.T) {
	mr, client := setup(t)
	next := &stubLookup{ids: map[string]string{}}
	c := NewRefCache(client, "users", time.Minute, next)

	for i := 0; i < 2; i++ {
		_, found, err := c.ResolveID(context.Background(), common.Substring("email", "nobody"))
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, mr.Keys())
}

func TestRefCachePassesErrorsThrough(t *testing.T) {
	_, client := setup(t)
	boom := errors.New("users down")
	c := NewRefCache(client, "users", time.Minute, &stubLookup{err: boom})

	_, _, err := c.ResolveID(context.Background(), common.Substring("email", "alice"))
	assert.ErrorIs(t, err, boom)
}

func TestRefCacheFallsBackWhenRedisIsDown(t *testing.T) {
	mr, client := setup(t)
	mr.Close()
	next := &stubLookup{ids: map[string]string{"alice": "u1"}}
	c := NewRefCache(client, "users", time.Minute, next)

	id, found, err := c.ResolveID(context.Background(), common.Substring("email", "alice"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u1", id)
}

func TestRefCacheDisabled(t *testing.T) {
	next := &stubLookup{ids: map[string]string{"alice": "u1"}}
	c := NewRefCache(nil, "users", time.Minute, next)

	for i := 0; i < 2; i++ {
		_, _, err := c.ResolveID(context.Background(), common.Substring("email", "alice"))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, next.calls)
}
