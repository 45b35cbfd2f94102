package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed FindingsStore.
// Records are appended to a list per run, preserving append order.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a Redis-backed findings store and verifies
// connectivity with a short ping.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "researchflow:"
	}

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix + "findings:",
	}, nil
}

// NewRedisStoreWithClient wraps an existing client (used in tests).
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "researchflow:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix + "findings:"}
}

// runKey returns the Redis list key for a run's findings.
func (s *RedisStore) runKey(runID string) string {
	if runID == "" {
		runID = "default"
	}
	return s.keyPrefix + runID
}

// Append persists a finding record with RPUSH, preserving order.
func (s *RedisStore) Append(ctx context.Context, f *Finding) error {
	if f == nil {
		return ErrInvalidInput
	}

	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal finding: %w", err)
	}

	if err := s.client.RPush(ctx, s.runKey(f.RunID), data).Err(); err != nil {
		return fmt.Errorf("append finding to redis: %w", err)
	}
	return nil
}

// Records returns all findings stored for a run in append order.
func (s *RedisStore) Records(ctx context.Context, runID string) ([]*Finding, error) {
	items, err := s.client.LRange(ctx, s.runKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read findings from redis: %w", err)
	}

	out := make([]*Finding, 0, len(items))
	for _, item := range items {
		var f Finding
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			return nil, fmt.Errorf("unmarshal finding: %w", err)
		}
		out = append(out, &f)
	}
	return out, nil
}

// Ping checks if the store is healthy.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
