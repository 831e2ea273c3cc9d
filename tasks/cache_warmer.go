package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

// Warmer reloads a cache and reports how many entries it loaded.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// CacheWarmer ticks every IntervalSeconds and warms the series cache when
// the cron schedule says a run is due.
type CacheWarmer struct {
	cfg      config.SchedulerConfig
	schedule cron.Schedule
	warmer   Warmer
	logger   *utils.Logger
	obs      cacheWarmerObs

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	next    time.Time
	wg      sync.WaitGroup
}

func NewCacheWarmer(cfg config.SchedulerConfig, warmer Warmer, logger *utils.Logger) (*CacheWarmer, error) {
	if warmer == nil {
		return nil, errors.New("nil warmer")
	}
	schedule, err := cron.ParseStandard(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("scheduler cron: %w", err)
	}
	return &CacheWarmer{
		cfg:      cfg,
		schedule: schedule,
		warmer:   warmer,
		logger:   logger,
	}, nil
}

func (s *CacheWarmer) Start() {
	s.StartWithContext(context.Background())
}

func (s *CacheWarmer) StartWithContext(ctx context.Context) {
	if s == nil || s.warmer == nil || !s.cfg.Enabled {
		return
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.next = s.schedule.Next(time.Now().UTC())
	s.wg.Add(1)
	s.mu.Unlock()

	interval := time.Duration(s.cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_, _ = s.Tick(runCtx, time.Now().UTC())
			case <-runCtx.Done():
				return
			}
		}
	}()
	s.logger.Printf("cache warmer started (cron %q, next %s)", s.cfg.Cron, s.next.Format(time.RFC3339))
}

func (s *CacheWarmer) Stop() {
	_ = s.StopWithContext(context.Background())
}

func (s *CacheWarmer) StopWithContext(ctx context.Context) error {
	if s == nil || !s.cfg.Enabled {
		return nil
	}
	s.mu.Lock()
	if s.cancel == nil || !s.running {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	cancel()
	waitDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick runs the warmer when now reached the next scheduled time. It
// reports whether a run happened.
func (s *CacheWarmer) Tick(ctx context.Context, now time.Time) (bool, error) {
	s.mu.Lock()
	if s.next.IsZero() {
		s.next = s.schedule.Next(now)
	}
	if now.Before(s.next) {
		s.mu.Unlock()
		return false, nil
	}
	s.next = s.schedule.Next(now)
	s.mu.Unlock()
	_, err := s.RunOnce(ctx)
	return true, err
}

// RunOnce warms the cache now, outside the schedule.
func (s *CacheWarmer) RunOnce(ctx context.Context) (int, error) {
	started := time.Now().UTC()
	n, err := s.warmer.Warm(ctx)
	s.obs.recordRun(started, n, err)
	if err != nil {
		s.logger.Errorf("scheduler cache.warm: %v", err)
		return n, err
	}
	return n, nil
}

// Next is the next scheduled run, zero before the first Start or Tick.
func (s *CacheWarmer) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
