package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/atelierhq/pulse/pkg/config"
)

const (
	keyPrefix  = "pulse:"
	feedMaxLen = 100

	dialTimeout = 2 * time.Second
	opTimeout   = 500 * time.Millisecond
)

// RedisCache implements Cache on a Redis backend.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisCache{client: client}, nil
}

// GetQuery implements Cache. Any backend error, decode error, or version
// mismatch is a miss.
func (c *RedisCache) GetQuery(ctx context.Context, key, kind string, dst any) bool {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache get failed for %s: %v", key, err)
		}

		return false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("cache entry for %s is not an envelope, treating as miss: %v", key, err)
		return false
	}

	if env.Version != schemaVersion || env.Kind != kind {
		return false
	}

	if err := json.Unmarshal(env.Payload, dst); err != nil {
		log.Printf("cache payload decode failed for %s: %v", key, err)
		return false
	}

	return true
}

// SetQuery implements Cache.
func (c *RedisCache) SetQuery(ctx context.Context, key, kind string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache marshal failed for %s: %v", key, err)
		return
	}

	raw, err := json.Marshal(envelope{Version: schemaVersion, Kind: kind, Payload: payload})
	if err != nil {
		log.Printf("cache envelope marshal failed for %s: %v", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		log.Printf("cache set failed for %s: %v", key, err)
	}
}

// PushRecent implements Cache. Entries are scored by timestamp so
// range-by-score reads come back newest first.
func (c *RedisCache) PushRecent(ctx context.Context, feed string, value any, at time.Time) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal feed entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	key := keyPrefix + "feed:" + feed

	if err := c.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: string(raw),
	}).Err(); err != nil {
		return fmt.Errorf("failed to push feed entry: %w", err)
	}

	// Bound the feed; the relational store holds full history
	if err := c.client.ZRemRangeByRank(ctx, key, 0, -(feedMaxLen + 1)).Err(); err != nil {
		log.Printf("failed to trim feed %s: %v", feed, err)
	}

	return nil
}

// Recent implements Cache.
func (c *RedisCache) Recent(ctx context.Context, feed string, limit int64) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = feedMaxLen
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	members, err := c.client.ZRevRangeByScore(ctx, keyPrefix+"feed:"+feed, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "+inf",
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", feed, err)
	}

	entries := make([]json.RawMessage, 0, len(members))
	for _, m := range members {
		entries = append(entries, json.RawMessage(m))
	}

	return entries, nil
}

// Ping implements Cache.
func (c *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return c.client.Ping(ctx).Err()
}

// Close implements Cache.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// QueryKey builds a deterministic cache key from the query kind and its
// resolved time range.
func QueryKey(kind, token string, start, end time.Time) string {
	return "query:" + kind + ":" + token + ":" +
		strconv.FormatInt(start.Unix(), 10) + ":" + strconv.FormatInt(end.Unix(), 10)
}
