// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"time"

	"github.com/go-chi/chi/v5"

	xglog "github.com/ManuGH/sxm2hls/internal/log"
)

// StackConfig configures the ingress middleware stack.
type StackConfig struct {
	EnableMetrics bool
	// Route labels metrics; nil uses the chi route pattern.
	Route         RouteFunc
	EnableLogging bool
	// RateLimitPerMinute limits requests per client IP; 0 disables.
	RateLimitPerMinute int
}

// NewRouter constructs a chi router with the stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the middleware stack to r, outermost first.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(Recoverer)
	r.Use(RequestID)
	if cfg.EnableMetrics {
		r.Use(Metrics(cfg.Route))
	}
	if cfg.EnableLogging {
		r.Use(xglog.Middleware())
	}
	if cfg.RateLimitPerMinute > 0 {
		r.Use(RateLimit(RateLimitConfig{RequestLimit: cfg.RateLimitPerMinute, WindowSize: time.Minute}))
	}
}
