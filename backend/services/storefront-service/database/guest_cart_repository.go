package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/redis/go-redis/v9"
)

// GuestCart is the cart of a visitor who has not logged in yet, keyed by the
// client supplied session id.
type GuestCart struct {
	SessionID string                `json:"session_id"`
	Items     []models.LineQuantity `json:"items"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// GuestCartRepository keeps guest carts as JSON blobs with a sliding TTL.
type GuestCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGuestCartRepository(client *redis.Client, ttl time.Duration) *GuestCartRepository {
	return &GuestCartRepository{client: client, ttl: ttl}
}

func (r *GuestCartRepository) key(sessionID string) string {
	return fmt.Sprintf("cart:guest:%s", sessionID)
}

// Get returns nil, nil when the session has no cart.
func (r *GuestCartRepository) Get(ctx context.Context, sessionID string) (*GuestCart, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart GuestCart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("decode guest cart: %w", err)
	}
	return &cart, nil
}

func (r *GuestCartRepository) Save(ctx context.Context, cart *GuestCart) error {
	cart.UpdatedAt = time.Now()
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(cart.SessionID), data, r.ttl).Err()
}

func (r *GuestCartRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
