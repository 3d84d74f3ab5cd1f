package groups

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryViewStateStoreRoundTrip(t *testing.T) {
	store := NewInMemoryViewStateStore()
	ctx := context.Background()

	_, err := store.ViewState(ctx, viewer)
	assert.ErrorIs(t, err, ErrViewStateNotFound)

	state := ViewState{Expanded: NewExpansionState(1, 2), Columns: []ColumnKey{ColumnName}}
	require.NoError(t, store.SaveViewState(ctx, viewer, state))

	state.Expanded.Expand(9)
	loaded, err := store.ViewState(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, loaded.Expanded.IDs())

	loaded.Columns[0] = ColumnActions
	again, err := store.ViewState(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, []ColumnKey{ColumnName}, again.Columns)
}

type fakeRedis struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedisViewStateStore(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisViewStateStore(client, RedisStoreOptions{TTL: time.Hour})
	ctx := context.Background()

	_, err := store.ViewState(ctx, viewer)
	assert.ErrorIs(t, err, ErrViewStateNotFound)

	lo := 10
	state := ViewState{
		Expanded: NewExpansionState(3, 2),
		Columns:  []ColumnKey{ColumnName, ColumnDiscount},
		Filter:   FilterCriteria{Query: "vip", Bracket: BracketMedium, CustomerCount: IntRange{Min: &lo}},
	}
	require.NoError(t, store.SaveViewState(ctx, viewer, state))

	raw := client.values["customer-groups:view:user-1"]
	require.NotEmpty(t, raw)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, []any{float64(2), float64(3)}, decoded["expanded"])
	assert.Equal(t, time.Hour, client.ttls["customer-groups:view:user-1"])

	loaded, err := store.ViewState(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, loaded.Expanded.IDs())
	assert.Equal(t, state.Columns, loaded.Columns)
	assert.Equal(t, "vip", loaded.Filter.Query)
	require.NotNil(t, loaded.Filter.CustomerCount.Min)
	assert.Equal(t, 10, *loaded.Filter.CustomerCount.Min)
}

func TestRedisViewStateStoreErrors(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisViewStateStore(client, RedisStoreOptions{Prefix: "cg:"})
	ctx := context.Background()

	client.values["cg:user-1"] = "{not json"
	_, err := store.ViewState(ctx, viewer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode view state")

	client.failGet = errors.New("connection refused")
	_, err = store.ViewState(ctx, viewer)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrViewStateNotFound)
}

func TestServiceUsesRedisStore(t *testing.T) {
	client := newFakeRedis()
	service := newTestService(t, Options{StateStore: NewRedisViewStateStore(client, RedisStoreOptions{})})
	ctx := context.Background()

	require.NoError(t, service.Expand(ctx, viewer, 5))
	view, err := service.Rows(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5, 6}, viewRowIDs(view))
	assert.Len(t, client.values, 1)
}
