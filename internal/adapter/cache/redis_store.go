package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/datanav/velruse/internal/repository"
)

// RedisStore implements KeyValueStore backed by Redis. Expiry is enforced by
// Redis TTLs, so abandoned records vanish without explicit deletion.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var _ repository.KeyValueStore = (*RedisStore)(nil)

// NewRedisStore constructs a Redis-backed store. All keys are namespaced
// under the given prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Store persists the JSON-encoded value with the given TTL.
func (s *RedisStore) Store(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist value: %w", err)
	}
	return nil
}

// Retrieve loads and decodes the stored value.
func (s *RedisStore) Retrieve(ctx context.Context, key string, dest any) (bool, error) {
	bytes, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("load value: %w", err)
	}
	if err := json.Unmarshal(bytes, dest); err != nil {
		return false, fmt.Errorf("decode value: %w", err)
	}
	return true, nil
}

// Take retrieves and deletes in one round trip. GETDEL makes the consume
// atomic, so a duplicated callback cannot replay the same record.
func (s *RedisStore) Take(ctx context.Context, key string, dest any) (bool, error) {
	bytes, err := s.client.GetDel(ctx, s.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("take value: %w", err)
	}
	if err := json.Unmarshal(bytes, dest); err != nil {
		return false, fmt.Errorf("decode value: %w", err)
	}
	return true, nil
}

// Delete removes the persisted key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("delete value: %w", err)
	}
	return nil
}
