package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStoreWithClient(client, ttl), mr
}

func TestCreateAndResolve(t *testing.T) {
	store, _ := setupStore(t, time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	sessionID, err := store.Create(ctx, userID)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)

	resolved, err := store.Resolve(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestSessionIDsAreUnique(t *testing.T) {
	store, _ := setupStore(t, time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	first, err := store.Create(ctx, userID)
	require.NoError(t, err)
	second, err := store.Create(ctx, userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both sessions stay valid independently
	resolved, err := store.Resolve(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
	resolved, err = store.Resolve(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestResolveUnknownSession(t *testing.T) {
	store, _ := setupStore(t, time.Hour)

	resolved, err := store.Resolve(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, resolved)
}

func TestResolveEmptySessionID(t *testing.T) {
	store, _ := setupStore(t, time.Hour)

	resolved, err := store.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, resolved)
}

func TestSessionExpiry(t *testing.T) {
	store, mr := setupStore(t, time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	sessionID, err := store.Create(ctx, userID)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	resolved, err := store.Resolve(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, resolved)
}

func TestDestroy(t *testing.T) {
	store, _ := setupStore(t, time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	sessionID, err := store.Create(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, sessionID))

	resolved, err := store.Resolve(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, resolved)

	// Destroying again is a no-op
	require.NoError(t, store.Destroy(ctx, sessionID))
}

func TestResolveMalformedPayload(t *testing.T) {
	store, mr := setupStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, mr.Set(keyPrefix+"bad", "not-a-uuid"))

	resolved, err := store.Resolve(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, resolved)

	// The malformed entry was evicted
	assert.False(t, mr.Exists(keyPrefix+"bad"))
}
