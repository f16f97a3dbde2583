package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"petcare/backend/internal/domain"
)

const defaultKeyPrefix = "petcare:stock-history"

// RedisStockHistoryCache stores pages under a generation number. Invalidate
// bumps the generation so every page cached before it becomes unreachable and
// ages out through its TTL.
type RedisStockHistoryCache struct {
	client *redis.Client
	prefix string
}

func NewRedisStockHistoryCache(addr string, password string, db int) *RedisStockHistoryCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStockHistoryCache{client: client, prefix: defaultKeyPrefix}
}

func (c *RedisStockHistoryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisStockHistoryCache) Close() error {
	return c.client.Close()
}

func (c *RedisStockHistoryCache) Get(ctx context.Context, limit int) ([]domain.StockLogEntry, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	val, err := c.client.Get(ctx, pageKey(c.prefix, gen, limit)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	var entries []domain.StockLogEntry
	if err := json.Unmarshal([]byte(val), &entries); err != nil {
		return nil, gen, false, err
	}
	return entries, gen, true, nil
}

// Set writes under the generation the caller read before querying the store.
// If Invalidate ran since, that generation is no longer read by Get.
func (c *RedisStockHistoryCache) Set(ctx context.Context, limit int, version int64, entries []domain.StockLogEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, pageKey(c.prefix, version, limit), payload, ttl).Err()
}

func (c *RedisStockHistoryCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey(c.prefix)).Err()
}

func (c *RedisStockHistoryCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(c.prefix)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func generationKey(prefix string) string {
	return prefix + ":gen"
}

func pageKey(prefix string, gen int64, limit int) string {
	return fmt.Sprintf("%s:%d:%d", prefix, gen, limit)
}
