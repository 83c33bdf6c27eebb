// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides the Prometheus metrics of the relay's session,
// resolution caches and HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthStepTotal counts login chain steps by step and result.
	AuthStepTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sxm2hls_auth_step_total",
		Help: "Total number of login chain steps, by step and result (success/failure)",
	}, []string{"step", "result"})

	// ReauthenticationTotal counts chain reruns triggered by a rejected credential.
	ReauthenticationTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sxm2hls_reauthentication_total",
		Help: "Total number of re-authentications after an upstream 401",
	})
)

// RecordAuthStep records the outcome of one login chain step.
// RecordAuthStep counts one login chain step.
func RecordAuthStep(step, result string) {
	AuthStepTotal.WithLabelValues(step, result).Inc()
}

// RecordReauthentication increments the re-authentication counter.
// RecordReauthentication counts one chain rerun after a 401.
func RecordReauthentication() {
	ReauthenticationTotal.Inc()
}
