package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dataforgoodfr/shiftdataportal-sub001/config"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) Warm(context.Context) (int, error) {
	w.calls.Add(1)
	return 4, w.err
}

func TestCacheWarmerTickFollowsCron(t *testing.T) {
	w := &countingWarmer{}
	s, err := NewCacheWarmer(config.SchedulerConfig{Enabled: true, Cron: "*/15 * * * *"}, w, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	start := time.Date(2026, 3, 1, 10, 2, 0, 0, time.UTC)
	ran, err := s.Tick(context.Background(), start)
	if err != nil || ran {
		t.Fatalf("first tick only arms the schedule")
	}
	if want := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC); !s.Next().Equal(want) {
		t.Fatalf("unexpected next run %s", s.Next())
	}
	if ran, _ := s.Tick(context.Background(), start.Add(5*time.Minute)); ran {
		t.Fatalf("must not run before the schedule")
	}
	if ran, _ := s.Tick(context.Background(), start.Add(13*time.Minute)); !ran {
		t.Fatalf("expected a run at 10:15")
	}
	if w.calls.Load() != 1 {
		t.Fatalf("expected one warm call, got %d", w.calls.Load())
	}
	st := s.StatsSnapshot()
	if st.RunsTotal != 1 || st.LastEntries != 4 || st.LastRunAtUTC == nil {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestCacheWarmerRecordsErrors(t *testing.T) {
	w := &countingWarmer{err: errors.New("db down")}
	s, _ := NewCacheWarmer(config.SchedulerConfig{Enabled: true, Cron: "@hourly"}, w, nil)
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected warm error")
	}
	if s.StatsSnapshot().RunErrorsTotal != 1 {
		t.Fatalf("expected error counted")
	}
}

func TestNewCacheWarmerRejectsBadCron(t *testing.T) {
	if _, err := NewCacheWarmer(config.SchedulerConfig{Cron: "every day"}, &countingWarmer{}, nil); err == nil {
		t.Fatalf("expected cron parse error")
	}
	if _, err := NewCacheWarmer(config.SchedulerConfig{Cron: "@daily"}, nil, nil); err == nil {
		t.Fatalf("expected nil warmer error")
	}
}

func TestCacheWarmerStopWithContextTimeout(t *testing.T) {
	s := &CacheWarmer{cfg: config.SchedulerConfig{Enabled: true}}
	s.cancel = func() {}
	s.running = true
	s.wg.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.StopWithContext(ctx); err == nil {
		t.Fatalf("expected timeout error")
	}
	s.wg.Done()
}

func TestCacheWarmerStartStop(t *testing.T) {
	s, _ := NewCacheWarmer(config.SchedulerConfig{Enabled: true, Cron: "@hourly", IntervalSeconds: 1}, &countingWarmer{}, nil)
	s.Start()
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.StopWithContext(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if s.running {
		t.Fatalf("expected running=false after stop")
	}
	disabled, _ := NewCacheWarmer(config.SchedulerConfig{Cron: "@hourly"}, &countingWarmer{}, nil)
	disabled.Start()
	if disabled.running {
		t.Fatalf("disabled warmer must not start")
	}
}
