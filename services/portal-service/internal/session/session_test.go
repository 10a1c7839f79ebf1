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

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl, "test:session:"), mr
}

func TestRedisStoreRoundTripAndExpiry(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	sess := New("tok", "u1", time.Now())
	require.NoError(t, store.Save(ctx, sess))
	assert.True(t, mr.Exists("test:session:"+sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, "u1", got.UserID)

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	require.NoError(t, mr.Set("test:session:bad", "{not json"))
	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	sess := New("tok", "u1", now)
	require.NoError(t, store.Save(ctx, sess))
	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	got.Token = "changed"

	again, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", again.Token, "stored copy must not alias callers")

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaffRole(t *testing.T) {
	s := &Session{AdminToken: "a", DoctorToken: "d"}
	assert.Equal(t, "Admin", s.StaffRole())
	assert.True(t, s.IsStaff())
	s.AdminToken = ""
	assert.Equal(t, "Doctor", s.StaffRole())
	s.DoctorToken = ""
	assert.False(t, s.IsStaff())
	var none *Session
	assert.False(t, none.IsStaff())
}

func TestLogoutClearsTokensAndDeletes(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()
	sess := New("tok", "u1", time.Now())
	sess.AdminToken = "admin"
	sess.DoctorToken = "doc"
	require.NoError(t, store.Save(ctx, sess))

	require.NoError(t, Logout(ctx, store, sess))
	assert.Empty(t, sess.AdminToken)
	assert.Empty(t, sess.DoctorToken)
	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Logout(ctx, store, nil))
}

func TestLoggedIn(t *testing.T) {
	var s *Session
	assert.False(t, s.LoggedIn())
	assert.True(t, New("tok", "", time.Now()).LoggedIn())
	assert.NotEmpty(t, New("", "", time.Now()).ID)
}
