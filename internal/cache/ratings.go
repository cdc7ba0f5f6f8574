package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rating is the cached aggregate for a title. Count zero means the title
// has no reviews (cached too, so empty titles don't hammer the database).
type Rating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRatingCache connects to redis and verifies the connection.
func NewRatingCache(ctx context.Context, url, password string, ttl time.Duration) (*RatingCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RatingCache{client: client, ttl: ttl}, nil
}

func ratingKey(titleID int64) string {
	return fmt.Sprintf("rating:title:%d", titleID)
}

// Get returns the cached rating, or ok=false on a miss.
func (c *RatingCache) Get(ctx context.Context, titleID int64) (Rating, bool, error) {
	var rating Rating
	raw, err := c.client.Get(ctx, ratingKey(titleID)).Result()
	if errors.Is(err, redis.Nil) {
		return rating, false, nil
	}
	if err != nil {
		return rating, false, fmt.Errorf("get cached rating: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &rating); err != nil {
		return rating, false, fmt.Errorf("decode cached rating: %w", err)
	}
	return rating, true, nil
}

func (c *RatingCache) Set(ctx context.Context, titleID int64, rating Rating) error {
	raw, err := json.Marshal(rating)
	if err != nil {
		return fmt.Errorf("encode rating: %w", err)
	}
	if err := c.client.Set(ctx, ratingKey(titleID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached rating: %w", err)
	}
	return nil
}

// Invalidate drops the cached rating after a review write.
func (c *RatingCache) Invalidate(ctx context.Context, titleID int64) error {
	if err := c.client.Del(ctx, ratingKey(titleID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached rating: %w", err)
	}
	return nil
}

func (c *RatingCache) Close() error {
	return c.client.Close()
}
