package groups

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	first, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	second, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewChartCache(time.Minute)
	cache.now = func() time.Time { return now }
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCacheSkipsErrorsAndPurges(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.GetOrRender("key", func() (string, error) { return "", errors.New("boom") })
	require.Error(t, err)

	calls := 0
	render := func() (string, error) {
		calls++
		return "ok", nil
	}
	_, _ = cache.GetOrRender("key", render)
	cache.Purge()
	_, _ = cache.GetOrRender("key", render)
	assert.Equal(t, 2, calls)
}

func TestChartCacheDisabledWithoutTTL(t *testing.T) {
	cache := NewChartCache(0)
	calls := 0
	render := func() (string, error) {
		calls++
		return "ok", nil
	}
	_, _ = cache.GetOrRender("key", render)
	_, _ = cache.GetOrRender("key", render)
	assert.Equal(t, 2, calls)
}

func TestChartCacheEvictsSoonestExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewBoundedChartCache(time.Minute, 2)
	cache.now = func() time.Time { return now }
	render := func(v string) func() (string, error) {
		return func() (string, error) { return v, nil }
	}

	for i := 0; i < 3; i++ {
		_, err := cache.GetOrRender("k"+strconv.Itoa(i), render(strconv.Itoa(i)))
		require.NoError(t, err)
		now = now.Add(time.Second)
	}
	assert.Equal(t, 2, cache.Stats().Entries)

	calls := 0
	_, _ = cache.GetOrRender("k0", func() (string, error) { calls++; return "again", nil })
	assert.Equal(t, 1, calls, "k0 was the oldest entry and should have been evicted")
}

func TestChartCacheSharesConcurrentRenders(t *testing.T) {
	cache := NewChartCache(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	render := func() (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cache.GetOrRender("key", render)
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "shared", got)
	}
	assert.Equal(t, int32(1), calls.Load())
	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)

	_, _ = cache.GetOrRender("key", render)
	assert.Equal(t, stats.Hits+1, cache.Stats().Hits)
}
