package tasks

import (
	"sync/atomic"
	"time"
)

type CacheWarmerStats struct {
	RunsTotal      uint64     `json:"runs_total"`
	RunErrorsTotal uint64     `json:"run_errors_total"`
	LastEntries    int64      `json:"last_entries"`
	LastRunAtUTC   *time.Time `json:"last_run_at_utc,omitempty"`
}

type cacheWarmerObs struct {
	runs        atomic.Uint64
	runErrors   atomic.Uint64
	lastEntries atomic.Int64
	lastRunNs   atomic.Int64
}

func (o *cacheWarmerObs) recordRun(now time.Time, entries int, err error) {
	o.runs.Add(1)
	if err != nil {
		o.runErrors.Add(1)
	}
	o.lastEntries.Store(int64(entries))
	o.lastRunNs.Store(now.UTC().UnixNano())
}

func (s *CacheWarmer) StatsSnapshot() CacheWarmerStats {
	if s == nil {
		return CacheWarmerStats{}
	}
	ns := s.obs.lastRunNs.Load()
	var last *time.Time
	if ns > 0 {
		t := time.Unix(0, ns).UTC()
		last = &t
	}
	return CacheWarmerStats{
		RunsTotal:      s.obs.runs.Load(),
		RunErrorsTotal: s.obs.runErrors.Load(),
		LastEntries:    s.obs.lastEntries.Load(),
		LastRunAtUTC:   last,
	}
}
