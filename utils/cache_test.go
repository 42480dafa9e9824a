package utils

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

func TestCacheDisabledWithoutClient(t *testing.T) {
	c := NewCache(nil)
	assert.False(t, c.Enabled())
	c.SetJSON("k", map[string]int{"a": 1}, 0)
	_, ok := c.GetBytes("k")
	assert.False(t, ok)
	c.InvalidateByPrefix("k")
}

func TestCacheSetGetInvalidate(t *testing.T) {
	mr, rc := newMiniRedis(t)
	c := NewCache(rc)

	c.SetJSON("cache:post:detail:1", map[string]int{"id": 1}, time.Minute)
	c.SetJSON("cache:post:detail:2", map[string]int{"id": 2}, 0)
	c.SetJSON("cache:posts:list:all", []int{1, 2}, time.Minute)

	b, ok := c.GetBytes("cache:post:detail:1")
	require.True(t, ok)
	assert.JSONEq(t, `{"id":1}`, string(b))
	assert.Equal(t, defaultCacheTTL, mr.TTL("cache:post:detail:2"))

	c.InvalidateByPrefix("cache:post:detail:")
	_, ok = c.GetBytes("cache:post:detail:1")
	assert.False(t, ok)
	_, ok = c.GetBytes("cache:post:detail:2")
	assert.False(t, ok)
	_, ok = c.GetBytes("cache:posts:list:all")
	assert.True(t, ok, "unrelated prefix must survive")
}

func TestTokenBlacklistMemory(t *testing.T) {
	now := time.Now()
	b := NewTokenBlacklist(nil)
	b.now = func() time.Time { return now }

	require.NoError(t, b.Revoke("tok", now.Add(time.Hour)))
	assert.True(t, b.IsRevoked("tok"))
	assert.False(t, b.IsRevoked("other"))

	now = now.Add(2 * time.Hour)
	assert.False(t, b.IsRevoked("tok"), "entry is dropped once the token has expired anyway")

	require.NoError(t, b.Revoke("stale", now.Add(-time.Minute)))
	assert.False(t, b.IsRevoked("stale"))
}

func TestTokenBlacklistRedis(t *testing.T) {
	mr, rc := newMiniRedis(t)
	b := NewTokenBlacklist(rc)

	require.NoError(t, b.Revoke("tok", time.Now().Add(time.Hour)))
	assert.True(t, b.IsRevoked("tok"))
	assert.True(t, mr.Exists("jwt:blacklist:tok"))

	mr.FastForward(2 * time.Hour)
	assert.False(t, b.IsRevoked("tok"))
}

func TestRevokeUserMemory(t *testing.T) {
	now := time.Unix(1700000000, 500)
	b := NewTokenBlacklist(nil)
	b.now = func() time.Time { return now }

	issued := now.Add(-time.Hour)
	assert.False(t, b.IsUserRevoked(7, issued))

	require.NoError(t, b.RevokeUser(7))
	assert.True(t, b.IsUserRevoked(7, issued))
	assert.False(t, b.IsUserRevoked(8, issued), "other users are untouched")
	assert.False(t, b.IsUserRevoked(7, now.Add(time.Second)), "tokens issued afterwards stay valid")

	now = now.Add(TokenTTL + time.Minute)
	assert.False(t, b.IsUserRevoked(7, issued))
}

func TestRevokeUserRedis(t *testing.T) {
	mr, rc := newMiniRedis(t)
	b := NewTokenBlacklist(rc)

	require.NoError(t, b.RevokeUser(7))
	assert.True(t, mr.Exists("jwt:user_cutoff:7"))
	assert.Equal(t, TokenTTL, mr.TTL("jwt:user_cutoff:7"))

	assert.True(t, b.IsUserRevoked(7, time.Now().Add(-time.Hour)))
	assert.False(t, b.IsUserRevoked(7, time.Now().Add(time.Second)))
	assert.False(t, b.IsUserRevoked(8, time.Now().Add(-time.Hour)))
}
