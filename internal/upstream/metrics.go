// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upstream

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxm2hls_upstream_request_total",
			Help: "Total number of upstream HTTP requests",
		},
		[]string{"operation", "status_class"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sxm2hls_upstream_request_duration_seconds",
			Help:    "Duration of upstream HTTP requests",
			Buckets: prometheus.ExponentialBuckets(0.05, 2.0, 8),
		},
		[]string{"operation", "status_class"},
	)
	requestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxm2hls_upstream_request_errors_total",
			Help: "Number of upstream requests that did not return 2xx",
		},
		[]string{"operation", "status_class"},
	)
)

func statusClass(err error, status int) string {
	if err != nil {
		return "error"
	}
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status > 0:
		return "1xx"
	}
	return "unknown"
}

func recordRequest(operation string, status int, duration time.Duration, err error) {
	class := statusClass(err, status)
	requestTotal.WithLabelValues(operation, class).Inc()
	requestDuration.WithLabelValues(operation, class).Observe(duration.Seconds())
	if class != "2xx" {
		requestErrors.WithLabelValues(operation, class).Inc()
	}
}
