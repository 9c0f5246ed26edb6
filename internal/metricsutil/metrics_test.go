package metricsutil

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCacheRecorderIncrementsCounters(t *testing.T) {
	m := New()
	rec := m.CacheRecorder()

	rec.RecordHit()
	rec.RecordHit()
	rec.RecordMiss()
	rec.RecordEviction("ttl")
	rec.UpdateEntryCount(42)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheMisses))
	assert.Equal(t, float64(42), testutil.ToFloat64(m.cacheEntries))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheEvictions.WithLabelValues("ttl")))
}

func TestRecordHTTPRequestObservesDurationAndCount(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("GET", "/myapp/default", "200", 15*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/myapp/default", "200")))
}
