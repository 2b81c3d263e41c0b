package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KVStore persists JSON documents under fixed keys, last-write-wins.
// It backs the notification settings mirror.
type KVStore struct {
	client *redis.Client
}

// NewKVStore creates a KVStore wrapping the given Redis client.
func NewKVStore(client *redis.Client) *KVStore {
	return &KVStore{client: client}
}

// LoadJSON unmarshals the stored value into dst and reports whether the key
// existed. dst is left untouched when the key is absent; fields missing from
// the stored payload keep the values dst already holds.
func (s *KVStore) LoadJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("kv decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON stores v as JSON under key with no expiry.
func (s *KVStore) SaveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}
