package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dataforgoodfr/shiftdataportal-sub001/tasks"
)

type workersMetricsCollector struct {
	warmer *tasks.CacheWarmer

	runsTotalDesc      *prometheus.Desc
	runErrorsTotalDesc *prometheus.Desc
	lastRunDesc        *prometheus.Desc
	lastEntriesDesc    *prometheus.Desc
}

func newWorkersMetricsCollector(warmer *tasks.CacheWarmer) prometheus.Collector {
	return &workersMetricsCollector{
		warmer: warmer,
		runsTotalDesc: prometheus.NewDesc(
			"dataportal_worker_runs_total",
			"Total number of background worker runs.",
			[]string{"worker"},
			nil,
		),
		runErrorsTotalDesc: prometheus.NewDesc(
			"dataportal_worker_run_errors_total",
			"Total number of background worker run errors.",
			[]string{"worker"},
			nil,
		),
		lastRunDesc: prometheus.NewDesc(
			"dataportal_worker_last_run_timestamp",
			"Unix timestamp of the last background worker run.",
			[]string{"worker"},
			nil,
		),
		lastEntriesDesc: prometheus.NewDesc(
			"dataportal_worker_last_entries",
			"Cache entries loaded by the last warmer run.",
			[]string{"worker"},
			nil,
		),
	}
}

func (c *workersMetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.runsTotalDesc
	ch <- c.runErrorsTotalDesc
	ch <- c.lastRunDesc
	ch <- c.lastEntriesDesc
}

func (c *workersMetricsCollector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.warmer == nil {
		return
	}
	s := c.warmer.StatsSnapshot()
	ch <- prometheus.MustNewConstMetric(c.runsTotalDesc, prometheus.CounterValue, float64(s.RunsTotal), "cache_warmer")
	ch <- prometheus.MustNewConstMetric(c.runErrorsTotalDesc, prometheus.CounterValue, float64(s.RunErrorsTotal), "cache_warmer")
	ch <- prometheus.MustNewConstMetric(c.lastEntriesDesc, prometheus.GaugeValue, float64(s.LastEntries), "cache_warmer")
	if s.LastRunAtUTC != nil {
		ch <- prometheus.MustNewConstMetric(c.lastRunDesc, prometheus.GaugeValue, float64(s.LastRunAtUTC.UTC().Unix()), "cache_warmer")
	}
}
