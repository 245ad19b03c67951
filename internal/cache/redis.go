package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bilgisen/addconnect/internal/models"
	"github.com/redis/go-redis/v9"
)

// PreviewCache is implemented by the Redis and in-memory caches
type PreviewCache interface {
	GetPreview(ctx context.Context, hash string) (*models.Preview, bool, error)
	SetPreview(ctx context.Context, hash string, p *models.Preview, ttl time.Duration) error
	ClearPreviews(ctx context.Context) error
	Close() error
}

var _ PreviewCache = (*RedisClient)(nil)

type RedisClient struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(redisURL, prefix string) (*RedisClient, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		prefix: prefix + "preview:",
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) GetPreview(ctx context.Context, hash string) (*models.Preview, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get error: %w", err)
	}

	var p models.Preview
	if err := json.Unmarshal(raw, &p); err != nil {
		// Undecodable entries are treated as misses and overwritten later
		return nil, false, nil
	}
	return &p, true, nil
}

func (r *RedisClient) SetPreview(ctx context.Context, hash string, p *models.Preview, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	return r.client.Set(ctx, r.prefix+hash, raw, ttl).Err()
}

func (r *RedisClient) ClearPreviews(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("error deleting keys: %w", err)
		}
	}

	return nil
}
