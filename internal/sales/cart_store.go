package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CartStore keeps one cart per session in Redis.
type CartStore struct {
	client redis.Cmdable
	ttl    time.Duration
	now    func() time.Time
}

// NewCartStore constructs the store; carts expire after ttl of inactivity.
func NewCartStore(client redis.Cmdable, ttl time.Duration) *CartStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &CartStore{client: client, ttl: ttl, now: time.Now}
}

// Load returns the session cart, or an empty cart when none is stored.
func (s *CartStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	payload, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewCart(), nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	cart := NewCart()
	if err := json.Unmarshal(payload, cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = []CartLine{}
	}
	return cart, nil
}

// Save stores cart and refreshes its expiry.
func (s *CartStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	cart.UpdatedAt = s.now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Delete removes the session cart.
func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}
