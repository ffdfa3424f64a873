package repository

import (
	redisapp "masonry_grid/internal/storage/redis"

	"github.com/redis/go-redis/v9"

	"context"
	"time"
)

type RedisDocumentCache struct {
	Client *redisapp.Client
}

func NewRedisDocumentCache(client *redisapp.Client) *RedisDocumentCache {
	return &RedisDocumentCache{Client: client}
}

func (r *RedisDocumentCache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	val, err := r.Client.Get(ctx, manifestKey(url)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisDocumentCache) Set(ctx context.Context, url string, data []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, manifestKey(url), data, ttl).Err()
}

func (r *RedisDocumentCache) Delete(ctx context.Context, urls ...string) error {
	if len(urls) == 0 {
		return nil
	}

	keys := make([]string, len(urls))
	for i, u := range urls {
		keys[i] = manifestKey(u)
	}
	return r.Client.Del(ctx, keys...).Err()
}

func manifestKey(url string) string {
	return "manifest:" + url
}
