package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cburgosro9303/vortex-config/internal/configsource"
	"github.com/cburgosro9303/vortex-config/internal/reposync"
)

// fakeSource is a minimal configsource.Source used to drive the
// scheduler without touching Git.
type fakeSource struct {
	refreshErr error
	calls      atomic.Int32
}

func (f *fakeSource) Fetch(context.Context, configsource.Query) (*configsource.Result, error) {
	return nil, nil
}
func (f *fakeSource) HealthCheck(context.Context) error { return nil }
func (f *fakeSource) Name() string                      { return "fake" }
func (f *fakeSource) SupportsRefresh() bool             { return true }
func (f *fakeSource) DefaultLabel() string              { return "main" }
func (f *fakeSource) Refresh(context.Context) error {
	f.calls.Add(1)
	return f.refreshErr
}

func TestTriggerRefreshResetsBackoffOnSuccess(t *testing.T) {
	src := &fakeSource{}
	state := reposync.New()
	sched := NewScheduler(src, state, Config{Interval: time.Second, MaxFailures: 2, BackoffMultiplier: 2, MaxBackoff: 10 * time.Second})

	sched.mu.Lock()
	sched.currentInterval = 4 * time.Second
	sched.mu.Unlock()

	require.NoError(t, sched.TriggerRefresh(context.Background()))
	assert.Equal(t, time.Second, sched.interval())
}

func TestIncreaseBackoffOnlyAfterMaxFailures(t *testing.T) {
	state := reposync.New()
	sched := NewScheduler(&fakeSource{refreshErr: errors.New("boom")}, state, Config{Interval: time.Second, MaxFailures: 2, BackoffMultiplier: 2, MaxBackoff: 10 * time.Second})

	state.RecordFailure("boom")
	sched.increaseBackoff()
	assert.Equal(t, time.Second, sched.interval(), "backoff should not widen before MaxFailures is reached")

	state.RecordFailure("boom")
	sched.increaseBackoff()
	assert.Equal(t, 2*time.Second, sched.interval())
}

func TestIncreaseBackoffCapsAtMaxBackoff(t *testing.T) {
	state := reposync.New()
	sched := NewScheduler(&fakeSource{}, state, Config{Interval: 3 * time.Second, MaxFailures: 1, BackoffMultiplier: 10, MaxBackoff: 5 * time.Second})
	state.RecordFailure("boom")
	sched.increaseBackoff()
	assert.Equal(t, 5*time.Second, sched.interval())
}

func TestStartAndStopTerminatesBackgroundGoroutine(t *testing.T) {
	state := reposync.New()
	src := &fakeSource{}
	sched := NewScheduler(src, state, Config{Interval: 10 * time.Millisecond})
	sched.Start()
	time.Sleep(35 * time.Millisecond)
	sched.Stop()
	assert.GreaterOrEqual(t, src.calls.Load(), int32(1))
}
