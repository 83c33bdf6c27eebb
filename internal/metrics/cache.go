// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookupTotal counts cache lookups by cache name and result (hit/miss).
	CacheLookupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sxm2hls_cache_lookup_total",
		Help: "Total number of cache lookups, by cache and result (hit/miss)",
	}, []string{"cache", "result"})

	// ResolutionDuration tracks how long a cache fill took against upstream.
	ResolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sxm2hls_resolution_duration_seconds",
		Help:    "Duration of upstream resolutions that fill a cache",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"cache", "result"})

	// CacheEntries tracks the number of entries held per cache.
	CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sxm2hls_cache_entries",
		Help: "Current number of entries per cache",
	}, []string{"cache"})
)

// RecordCacheLookup records a hit or miss.
// RecordCacheLookup counts a lookup as hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupTotal.WithLabelValues(cache, result).Inc()
}

// ObserveResolution records one upstream resolution.
func ObserveResolution(cache string, success bool, duration time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	ResolutionDuration.WithLabelValues(cache, result).Observe(duration.Seconds())
}

// SetCacheEntries sets the entry gauge for a cache.
// SetCacheEntries sets the entry gauge for cache.
func SetCacheEntries(cache string, n int) {
	CacheEntries.WithLabelValues(cache).Set(float64(n))
}
