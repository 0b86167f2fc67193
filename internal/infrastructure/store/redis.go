package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mise/internal/domain/location"
	"mise/internal/shared/config"
)

const locationKeyPrefix = "mise:location:"

// RedisStore persists location state in Redis as JSON values, one key per
// location. State survives restarts; keys never expire.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(cfg *config.RedisConfig) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.GetAddr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// NewRedisStoreWithClient wires an existing client, used by tests.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, locationID string) (*location.State, error) {
	raw, err := s.client.Get(ctx, locationKeyPrefix+locationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read location state: %w", err)
	}

	var state location.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode location state: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Set(ctx context.Context, locationID string, state location.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode location state: %w", err)
	}
	if err := s.client.Set(ctx, locationKeyPrefix+locationID, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write location state: %w", err)
	}
	return nil
}

// Ping verifies connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
