package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cburgosro9303/vortex-config/internal/cachekey"
	"github.com/cburgosro9303/vortex-config/internal/configsource"
)

func result(name string) *configsource.Result {
	return &configsource.Result{Name: name}
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	key := cachekey.New("myapp", []string{"prod"}, "main")

	c.Insert(key, result("myapp"))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "myapp", got.Name)
}

func TestGetMissingKeyIsMiss(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	_, ok := c.Get(cachekey.New("nope", nil, "main"))
	assert.False(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	c, err := New(Config{TTL: 20 * time.Millisecond}, nil)
	require.NoError(t, err)
	key := cachekey.New("myapp", nil, "main")
	c.Insert(key, result("myapp"))

	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get(key)
	assert.False(t, ok, "entry should be treated as expired once past TTL even before the sweep runs")
}

func TestGetOrFetchCoalescesConcurrentCallers(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	key := cachekey.New("myapp", nil, "main")

	var calls atomic.Int32
	fetch := func(ctx context.Context) (*configsource.Result, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return result("myapp"), nil
	}

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			_, _ = c.GetOrFetch(context.Background(), key, fetch)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	key := cachekey.New("myapp", nil, "main")

	_, err = c.GetOrFetch(context.Background(), key, func(context.Context) (*configsource.Result, error) {
		return nil, errors.New("upstream down")
	})
	require.Error(t, err)
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestInvalidateRemovesSingleEntry(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	key := cachekey.New("myapp", []string{"prod"}, "main")
	c.Insert(key, result("myapp"))

	res := c.Invalidate(key)
	assert.Equal(t, 1, res.Count)
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestInvalidateByAppRemovesAllProfilesAndLabels(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	c.Insert(cachekey.New("myapp", []string{"dev"}, "main"), result("myapp"))
	c.Insert(cachekey.New("myapp", []string{"prod"}, "release"), result("myapp"))
	c.Insert(cachekey.New("other", []string{"prod"}, "main"), result("other"))

	res := c.InvalidateByApp("myapp")
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 1, c.EntryCount())
}

func TestInvalidateByAppProfile(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	c.Insert(cachekey.New("myapp", []string{"dev"}, "main"), result("myapp"))
	c.Insert(cachekey.New("myapp", []string{"dev"}, "feature"), result("myapp"))
	c.Insert(cachekey.New("myapp", []string{"prod"}, "main"), result("myapp"))

	res := c.InvalidateByAppProfile("myapp", "dev")
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 1, c.EntryCount())
}

func TestInvalidateAll(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	c.Insert(cachekey.New("a", nil, "main"), result("a"))
	c.Insert(cachekey.New("b", nil, "main"), result("b"))

	res := c.InvalidateAll()
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 0, c.EntryCount())
}

func TestInvalidateByPatternInvalidPatternReturnsZeroNotError(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	c.Insert(cachekey.New("a", nil, "main"), result("a"))

	res := c.InvalidateByPattern("[")
	assert.Equal(t, 0, res.Count)
	assert.Equal(t, 1, c.EntryCount())
}

func TestInsertOverExistingKeyRecordsReplacedEviction(t *testing.T) {
	recorder := &spyMetrics{}
	c, err := New(Config{}, recorder)
	require.NoError(t, err)
	key := cachekey.New("myapp", nil, "main")

	c.Insert(key, result("v1"))
	c.Insert(key, result("v2"))

	assert.Contains(t, recorder.reasons, ReasonReplaced)
	got, _ := c.Get(key)
	assert.Equal(t, "v2", got.Name)
}

func TestCapacityEvictionRecordsCapacityReason(t *testing.T) {
	recorder := &spyMetrics{}
	c, err := New(Config{MaxCapacity: 1}, recorder)
	require.NoError(t, err)

	c.Insert(cachekey.New("a", nil, "main"), result("a"))
	c.Insert(cachekey.New("b", nil, "main"), result("b"))

	assert.Contains(t, recorder.reasons, ReasonCapacity)
	assert.Equal(t, 1, c.EntryCount())
}

type spyMetrics struct {
	mu      sync.Mutex
	reasons []string
}

func (s *spyMetrics) RecordHit()  {}
func (s *spyMetrics) RecordMiss() {}
func (s *spyMetrics) RecordEviction(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasons = append(s.reasons, reason)
}
func (s *spyMetrics) RecordOperationDuration(string, time.Duration) {}
func (s *spyMetrics) UpdateEntryCount(int)                          {}
