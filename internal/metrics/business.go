// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog metrics
	catalogChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "canalview_catalog_channels",
		Help: "Number of channels in the current catalog snapshot",
	})

	catalogStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "canalview_catalog_streams",
		Help: "Number of streams in the current catalog snapshot",
	})

	catalogAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "canalview_catalog_last_refresh_timestamp_seconds",
		Help: "Unix time of the last successful catalog refresh",
	})

	// Refresh metrics
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canalview_refresh_total",
		Help: "Refresh attempts by outcome",
	}, []string{"outcome"}) // outcome=fresh_cache|upstream|stale_fallback|failure

	refreshFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canalview_refresh_failures_total",
		Help: "Total number of refresh failures by stage",
	}, []string{"stage"}) // stage=fetch|decode|persist

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "canalview_refresh_duration_seconds",
		Help:    "Time spent on a full refresh cycle",
		Buckets: prometheus.DefBuckets,
	})

	// Upstream metrics
	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "canalview_upstream_request_duration_seconds",
		Help:    "iptv-org request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"}) // outcome=success|error

	// Cache metrics
	cacheReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canalview_cache_reads_total",
		Help: "Cache payload reads by result",
	}, []string{"result"}) // result=fresh|stale|miss|error

	// History metrics
	historyWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canalview_history_writes_total",
		Help: "Watch history inserts by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

func RecordCatalog(channels, streams int, refreshedAtUnix float64) {
	catalogChannels.Set(float64(channels))
	catalogStreams.Set(float64(streams))
	catalogAge.Set(refreshedAtUnix)
}

func IncRefresh(outcome string)          { refreshTotal.WithLabelValues(outcome).Inc() }
func IncRefreshFailure(stage string)     { refreshFailuresTotal.WithLabelValues(stage).Inc() }
func ObserveRefreshDuration(sec float64) { refreshDuration.Observe(sec) }

func ObserveUpstreamRequest(outcome string, sec float64) {
	upstreamRequestDuration.WithLabelValues(outcome).Observe(sec)
}

func IncCacheRead(result string) { cacheReads.WithLabelValues(result).Inc() }

func IncHistoryWrite(outcome string) { historyWrites.WithLabelValues(outcome).Inc() }
