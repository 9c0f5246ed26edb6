// Package refresh implements the background scheduler that periodically
// calls a configsource.Source's Refresh method, backing off the
// interval after consecutive failures and resetting on success.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/cburgosro9303/vortex-config/internal/configsource"
	"github.com/cburgosro9303/vortex-config/internal/reposync"
	"github.com/cburgosro9303/vortex-config/internal/sklog"
)

// Config configures a Scheduler's retry/backoff behavior.
type Config struct {
	Interval          time.Duration
	MaxFailures       uint32
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval == 0 {
		c.Interval = 30 * time.Second
	}
	if c.MaxFailures == 0 {
		c.MaxFailures = 3
	}
	if c.BackoffMultiplier == 0 {
		c.BackoffMultiplier = 2.0
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 300 * time.Second
	}
	return c
}

// Scheduler periodically refreshes a configsource.Source on a single
// background goroutine, widening the interval under sustained failure
// and resetting it to the base interval on success, per spec.md §4.8.
type Scheduler struct {
	source configsource.Source
	state  *reposync.State
	cfg    Config

	mu              sync.Mutex
	currentInterval time.Duration

	shutdown chan struct{}
	done     chan struct{}
}

// NewScheduler constructs a Scheduler. Call Start to begin the
// background loop.
func NewScheduler(source configsource.Source, state *reposync.State, cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		source:          source,
		state:           state,
		cfg:             cfg,
		currentInterval: cfg.Interval,
		shutdown:        make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// Start spawns the single background refresh goroutine.
func (s *Scheduler) Start() {
	sklog.Infof("starting refresh scheduler with interval %v", s.cfg.Interval)
	go s.run()
}

// Stop signals the background goroutine to exit and waits for it.
func (s *Scheduler) Stop() {
	close(s.shutdown)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	timer := time.NewTimer(s.interval())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			s.doRefresh(context.Background())
			timer.Reset(s.interval())
		case <-s.shutdown:
			sklog.Infof("refresh scheduler shutting down")
			return
		}
	}
}

func (s *Scheduler) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentInterval
}

func (s *Scheduler) doRefresh(ctx context.Context) {
	sklog.Debugf("starting scheduled refresh")
	if err := s.source.Refresh(ctx); err != nil {
		s.increaseBackoff()
		sklog.Warningf("scheduled refresh failed: %v", err)
		return
	}
	s.resetBackoff()
	sklog.Debugf("scheduled refresh succeeded")
}

// TriggerRefresh performs an out-of-band refresh, independent of the
// background loop's timer, applying the same backoff accounting.
func (s *Scheduler) TriggerRefresh(ctx context.Context) error {
	sklog.Infof("manual refresh triggered")
	err := s.source.Refresh(ctx)
	if err != nil {
		s.increaseBackoff()
		return err
	}
	s.resetBackoff()
	return nil
}

func (s *Scheduler) resetBackoff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentInterval = s.cfg.Interval
}

// increaseBackoff widens currentInterval only once the sync state's
// consecutive failure count has reached MaxFailures, multiplying the
// *current* interval (not the base) and capping at MaxBackoff.
func (s *Scheduler) increaseBackoff() {
	if s.state == nil || s.state.FailureCount() < s.cfg.MaxFailures {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := time.Duration(float64(s.currentInterval) * s.cfg.BackoffMultiplier)
	if next > s.cfg.MaxBackoff {
		next = s.cfg.MaxBackoff
	}
	s.currentInterval = next
	sklog.Debugf("increased refresh backoff to %v after %d failures", s.currentInterval, s.state.FailureCount())
}
