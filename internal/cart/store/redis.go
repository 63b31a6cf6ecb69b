package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"karigari/internal/cart/models"
	id "karigari/pkg/domain"
)

const cartKeyPrefix = "cart:buyer:"

// RedisStore keeps each buyer's cart as one JSON document. Carts are
// single-session working state, so a shared cache is the right home for
// them; orders are the durable record.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed cart store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cartKey(buyerID id.UserID) string {
	return cartKeyPrefix + buyerID.String()
}

func (s *RedisStore) Get(ctx context.Context, buyerID id.UserID) (*models.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(buyerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &cart, nil
}

func (s *RedisStore) Put(ctx context.Context, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(cart.BuyerID), data, 0).Err(); err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}
