package groups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of go-redis used by RedisViewStateStore.
// *redis.Client and *redis.ClusterClient both satisfy it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisViewStateStore persists view state as JSON under one key per viewer.
type RedisViewStateStore struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

// RedisStoreOptions configures key naming and expiry.
type RedisStoreOptions struct {
	Prefix string
	TTL    time.Duration
}

// NewRedisViewStateStore wraps a redis client. A zero TTL keeps keys forever.
func NewRedisViewStateStore(client RedisClient, opts RedisStoreOptions) *RedisViewStateStore {
	if opts.Prefix == "" {
		opts.Prefix = "customer-groups:view:"
	}
	return &RedisViewStateStore{client: client, prefix: opts.Prefix, ttl: opts.TTL}
}

// ViewState loads the viewer's state. A missing key yields ErrViewStateNotFound.
func (s *RedisViewStateStore) ViewState(ctx context.Context, viewer ViewerContext) (ViewState, error) {
	raw, err := s.client.Get(ctx, s.key(viewer)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ViewState{}, ErrViewStateNotFound
	}
	if err != nil {
		return ViewState{}, fmt.Errorf("groups: load view state: %w", err)
	}
	var state ViewState
	if err := json.Unmarshal(raw, &state); err != nil {
		return ViewState{}, fmt.Errorf("groups: decode view state: %w", err)
	}
	return state, nil
}

// SaveViewState writes the viewer's state.
func (s *RedisViewStateStore) SaveViewState(ctx context.Context, viewer ViewerContext, state ViewState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("groups: encode view state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(viewer), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("groups: save view state: %w", err)
	}
	return nil
}

func (s *RedisViewStateStore) key(viewer ViewerContext) string {
	return s.prefix + viewer.UserID
}
