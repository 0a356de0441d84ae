package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists cache snapshots in Redis under a single key, for
// sharing a translation cache across machines or surviving local disk
// loss.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL string // Redis connection URL (e.g., "redis://localhost:6379")
	Key string // Snapshot key (default: "fast-translator:cache")
}

const defaultRedisKey = "fast-translator:cache"

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	key := cfg.Key
	if key == "" {
		key = defaultRedisKey
	}

	return &RedisStore{client: client, key: key}, nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing client.
func NewRedisStoreFromClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Load reads the snapshot from Redis. A missing key loads as empty.
func (s *RedisStore) Load() (map[string]StoredEntry, error) {
	ctx := context.Background()

	data, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return map[string]StoredEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache snapshot: %w", err)
	}

	var entries map[string]StoredEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, fmt.Errorf("decoding cache snapshot: %w", err)
	}
	if entries == nil {
		entries = map[string]StoredEntry{}
	}
	return entries, nil
}

// Save replaces the snapshot. Redis SET is atomic, so readers never see a
// partial snapshot.
func (s *RedisStore) Save(entries map[string]StoredEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding cache snapshot: %w", err)
	}
	return s.client.Set(context.Background(), s.key, string(data), 0).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping() error {
	return s.client.Ping(context.Background()).Err()
}

// Verify RedisStore implements Store
var _ Store = (*RedisStore)(nil)
