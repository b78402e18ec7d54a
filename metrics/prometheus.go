package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric descriptors exposed through the prometheus.Collector bridge.
var (
	levelHitsDesc = prometheus.NewDesc(
		"cache_level_hits_total",
		"Entries served by this level.",
		[]string{"level"}, nil,
	)
	levelMissesDesc = prometheus.NewDesc(
		"cache_level_misses_total",
		"Lookups this level could not serve.",
		[]string{"level"}, nil,
	)
	levelSetsDesc = prometheus.NewDesc(
		"cache_level_sets_total",
		"Successful writes on this level.",
		[]string{"level"}, nil,
	)
	levelDeletesDesc = prometheus.NewDesc(
		"cache_level_deletes_total",
		"Successful deletes on this level.",
		[]string{"level"}, nil,
	)
	levelFailuresDesc = prometheus.NewDesc(
		"cache_level_failures_total",
		"Failed operations on this level.",
		[]string{"level"}, nil,
	)
	levelEvictionsDesc = prometheus.NewDesc(
		"cache_level_evictions_total",
		"Entries evicted by this level to honor its size bound.",
		[]string{"level"}, nil,
	)
	lookupsDesc = prometheus.NewDesc(
		"cache_lookups_total",
		"Full lookups across all levels by outcome.",
		[]string{"result"}, nil,
	)
	operationsDesc = prometheus.NewDesc(
		"cache_operations_total",
		"Public cache operations served.",
		nil, nil,
	)
	hitRateDesc = prometheus.NewDesc(
		"cache_hit_rate",
		"Hits over total lookups.",
		nil, nil,
	)
)

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- levelHitsDesc
	ch <- levelMissesDesc
	ch <- levelSetsDesc
	ch <- levelDeletesDesc
	ch <- levelFailuresDesc
	ch <- levelEvictionsDesc
	ch <- lookupsDesc
	ch <- operationsDesc
	ch <- hitRateDesc
}

// Collect implements prometheus.Collector. Values are reported as const
// metrics from a snapshot, so the collector can sit on a consumer-owned
// registry without this module running an HTTP endpoint.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.Snapshot()

	for level, ls := range snap.PerLevel {
		ch <- prometheus.MustNewConstMetric(levelHitsDesc, prometheus.CounterValue, float64(ls.Hits), level)
		ch <- prometheus.MustNewConstMetric(levelMissesDesc, prometheus.CounterValue, float64(ls.Misses), level)
		ch <- prometheus.MustNewConstMetric(levelSetsDesc, prometheus.CounterValue, float64(ls.Sets), level)
		ch <- prometheus.MustNewConstMetric(levelDeletesDesc, prometheus.CounterValue, float64(ls.Deletes), level)
		ch <- prometheus.MustNewConstMetric(levelFailuresDesc, prometheus.CounterValue, float64(ls.Failures), level)
		ch <- prometheus.MustNewConstMetric(levelEvictionsDesc, prometheus.CounterValue, float64(ls.Evictions), level)
	}

	ch <- prometheus.MustNewConstMetric(lookupsDesc, prometheus.CounterValue, float64(snap.Overall.Hits), "hit")
	ch <- prometheus.MustNewConstMetric(lookupsDesc, prometheus.CounterValue, float64(snap.Overall.Misses), "miss")
	ch <- prometheus.MustNewConstMetric(operationsDesc, prometheus.CounterValue, float64(snap.Overall.Operations))
	ch <- prometheus.MustNewConstMetric(hitRateDesc, prometheus.GaugeValue, snap.Overall.HitRate)
}

// Ensure Collector implements prometheus.Collector
var _ prometheus.Collector = (*Collector)(nil)
