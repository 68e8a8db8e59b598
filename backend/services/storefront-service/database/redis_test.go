package database

import (
	"context"
	"testing"
	"time"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestGuestCartRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewGuestCartRepository(client, 7*24*time.Hour)
	ctx := context.Background()

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	pid := uuid.New()
	require.NoError(t, repo.Save(ctx, &GuestCart{SessionID: "sess-1", Items: []models.LineQuantity{{ProductID: pid, Quantity: 2}}}))

	got, err = repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pid, got.Items[0].ProductID)
	assert.Equal(t, 7*24*time.Hour, mr.TTL("cart:guest:sess-1"))

	require.NoError(t, repo.Delete(ctx, "sess-1"))
	got, err = repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewIdempotencyStore(client, "checkout")
	ctx := context.Background()

	v, err := store.Get(ctx, "u1:abc")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, store.Set(ctx, "u1:abc", "order-1", time.Hour))
	v, err = store.Get(ctx, "u1:abc")
	require.NoError(t, err)
	assert.Equal(t, "order-1", v)
	assert.True(t, mr.Exists("idem:checkout:u1:abc"))
}

func TestIdempotencyStore_ClaimIsExclusive(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewIdempotencyStore(client, "checkout")
	ctx := context.Background()

	ok, err := store.Claim(ctx, "u1:abc", "in-flight", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, "u1:abc", "in-flight", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "u1:abc"))
	ok, err = store.Claim(ctx, "u1:abc", "in-flight", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("idem:checkout:u1:abc"))
}
