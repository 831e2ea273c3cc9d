package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/screenshot"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/series"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/urlstate"
)

type portalMetricsCollector struct {
	series  *series.Client
	history *urlstate.History
	shots   *screenshot.Service

	cacheHitsDesc    *prometheus.Desc
	cacheMissesDesc  *prometheus.Desc
	cacheEntriesDesc *prometheus.Desc
	urlWritesDesc    *prometheus.Desc
	sessionsDesc     *prometheus.Desc
	shotsDesc        *prometheus.Desc
	shotFailuresDesc *prometheus.Desc
}

func newPortalMetricsCollector(client *series.Client, history *urlstate.History, shots *screenshot.Service) prometheus.Collector {
	return &portalMetricsCollector{
		series:           client,
		history:          history,
		shots:            shots,
		cacheHitsDesc:    prometheus.NewDesc("dataportal_cache_hits_total", "Data queries answered from the cache.", nil, nil),
		cacheMissesDesc:  prometheus.NewDesc("dataportal_cache_misses_total", "Data queries that reached the database.", nil, nil),
		cacheEntriesDesc: prometheus.NewDesc("dataportal_cache_entries", "Entries currently held by the data cache.", nil, nil),
		urlWritesDesc:    prometheus.NewDesc("dataportal_url_writes_total", "History entries replaced by selection changes.", nil, nil),
		sessionsDesc:     prometheus.NewDesc("dataportal_sync_sessions", "Live selection sessions.", nil, nil),
		shotsDesc:        prometheus.NewDesc("dataportal_screenshot_launches_total", "Browsers launched for screenshots.", nil, nil),
		shotFailuresDesc: prometheus.NewDesc("dataportal_screenshot_failures_total", "Screenshots that failed after launch.", nil, nil),
	}
}

func (c *portalMetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cacheHitsDesc
	ch <- c.cacheMissesDesc
	ch <- c.cacheEntriesDesc
	ch <- c.urlWritesDesc
	ch <- c.sessionsDesc
	ch <- c.shotsDesc
	ch <- c.shotFailuresDesc
}

func (c *portalMetricsCollector) Collect(ch chan<- prometheus.Metric) {
	if c == nil {
		return
	}
	if c.series != nil {
		s := c.series.CacheStats()
		ch <- prometheus.MustNewConstMetric(c.cacheHitsDesc, prometheus.CounterValue, float64(s.Hits))
		ch <- prometheus.MustNewConstMetric(c.cacheMissesDesc, prometheus.CounterValue, float64(s.Misses))
		ch <- prometheus.MustNewConstMetric(c.cacheEntriesDesc, prometheus.GaugeValue, float64(s.Entries))
	}
	if c.history != nil {
		ch <- prometheus.MustNewConstMetric(c.urlWritesDesc, prometheus.CounterValue, float64(c.history.Writes()))
		ch <- prometheus.MustNewConstMetric(c.sessionsDesc, prometheus.GaugeValue, float64(c.history.Len()))
	}
	if c.shots != nil {
		s := c.shots.Stats()
		ch <- prometheus.MustNewConstMetric(c.shotsDesc, prometheus.CounterValue, float64(s.Launches))
		ch <- prometheus.MustNewConstMetric(c.shotFailuresDesc, prometheus.CounterValue, float64(s.Failures))
	}
}
