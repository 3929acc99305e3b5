// Package cache keeps per-user carts in Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"artisanx/internal/domain/entity"
)

const (
	cartPrefix = "cart:"
	cartTTL    = 30 * 24 * time.Hour
)

type CartRepository struct {
	client *redis.Client
}

// NewClient parses redisURL and checks the server is reachable.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}
	return client, nil
}

func NewCartRepository(client *redis.Client) *CartRepository {
	return &CartRepository{client: client}
}

func key(userID string) string {
	return cartPrefix + userID
}

func (r *CartRepository) Load(ctx context.Context, userID string) (*entity.Cart, error) {
	raw, err := r.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &entity.Cart{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load cart %s", userID)
	}

	var cart entity.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, errors.Wrapf(err, "decode cart %s", userID)
	}
	return &cart, nil
}

// Save stores the cart and restarts its expiry.
func (r *CartRepository) Save(ctx context.Context, userID string, cart *entity.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := r.client.Set(ctx, key(userID), raw, cartTTL).Err(); err != nil {
		return errors.Wrapf(err, "save cart %s", userID)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		return errors.Wrapf(err, "delete cart %s", userID)
	}
	return nil
}
