// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	"github.com/ManuGH/sxm2hls/internal/validate"
)

var (
	httpSchemes   = []string{"http", "https"}
	logLevels     = []string{"trace", "debug", "info", "warn", "error"}
	traceExporter = []string{"http", "grpc"}
)

// Validate checks the effective configuration. All problems are reported at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("account.username", cfg.Account.Username)
	v.NotEmpty("account.password", cfg.Account.Password)

	v.IP("listen.ip", cfg.Listen.IP)
	v.Port("listen.port", cfg.Listen.Port)

	v.URL("upstream.baseURL", cfg.Upstream.BaseURL, httpSchemes)
	v.URL("upstream.cdnURL", cfg.Upstream.CDNURL, httpSchemes)
	v.Contains("upstream.cdnURL", cfg.Upstream.CDNURL, "{}")
	v.NonNegative("upstream.rateLimit", cfg.Upstream.RateLimit)
	v.NonNegative("upstream.rateBurst", float64(cfg.Upstream.RateBurst))
	v.NonNegative("upstream.timeout", cfg.Upstream.Timeout.Seconds())

	v.NotEmpty("stream.bitrate", cfg.Stream.Bitrate)
	v.NonNegative("relay.rateLimit", float64(cfg.Relay.RateLimit))

	if cfg.Admin.ListenAddr != "" {
		v.HostPort("admin.listenAddr", cfg.Admin.ListenAddr)
	}

	v.OneOf("logLevel", cfg.LogLevel, logLevels)

	if cfg.Tracing.Enabled {
		v.OneOf("tracing.exporter", cfg.Tracing.Exporter, traceExporter)
		v.NotEmpty("tracing.endpoint", cfg.Tracing.Endpoint)
		v.FloatRange("tracing.samplingRate", cfg.Tracing.SamplingRate, 0, 1)
	}

	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
