package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *AppSessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewAppSessionStore(rdb, ttl)
}

func TestCreateGetDelete(t *testing.T) {
	_, s := newStore(t, time.Hour)
	ctx := context.Background()

	tok := NewToken()
	assert.Len(t, tok, 64)
	require.NoError(t, s.Create(ctx, tok, "u1"))

	as, err := s.Get(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", as.UserID)
	assert.Equal(t, as.IssuedAt+int64(time.Hour/time.Second), as.ExpiresAt)

	require.NoError(t, s.Delete(ctx, tok))
	_, err = s.Get(ctx, tok)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestGet_Expired(t *testing.T) {
	mr, s := newStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "t1", "u1"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "t1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRevokeAllForUser(t *testing.T) {
	_, s := newStore(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "a", "u1"))
	require.NoError(t, s.Create(ctx, "b", "u1"))
	require.NoError(t, s.Create(ctx, "c", "u2"))

	require.NoError(t, s.RevokeAllForUser(ctx, "u1"))

	for _, tok := range []string{"a", "b"} {
		_, err := s.Get(ctx, tok)
		assert.ErrorIs(t, err, ErrNoSession, tok)
	}
	as, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "u2", as.UserID)
}
