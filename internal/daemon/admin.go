// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/sxm2hls/internal/health"
	"github.com/ManuGH/sxm2hls/internal/middleware"
)

// AdminHandler serves probes and prometheus metrics on the admin listener.
func AdminHandler(hm *health.Manager) http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{EnableLogging: true})
	r.Get("/healthz", hm.ServeHealth)
	r.Get("/readyz", hm.ServeReady)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
