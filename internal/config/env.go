// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/sxm2hls/internal/log"
)

// Environment keys. Each overrides the matching YAML key.
const (
	EnvUsername          = "SXM2HLS_USERNAME"
	EnvPassword          = "SXM2HLS_PASSWORD"
	EnvListenIP          = "SXM2HLS_LISTEN_IP"
	EnvListenPort        = "SXM2HLS_LISTEN_PORT"
	EnvUpstreamURL       = "SXM2HLS_UPSTREAM_URL"
	EnvCDNURL            = "SXM2HLS_CDN_URL"
	EnvUserAgent         = "SXM2HLS_USER_AGENT"
	EnvUpstreamRateLimit = "SXM2HLS_UPSTREAM_RATE_LIMIT"
	EnvUpstreamRateBurst = "SXM2HLS_UPSTREAM_RATE_BURST"
	EnvUpstreamTimeout   = "SXM2HLS_UPSTREAM_TIMEOUT"
	EnvBitrate           = "SXM2HLS_BITRATE"
	EnvRelayRateLimit    = "SXM2HLS_RELAY_RATE_LIMIT"
	EnvAdminListen       = "SXM2HLS_ADMIN_LISTEN"
	EnvPlaylistPath      = "SXM2HLS_PLAYLIST_PATH"
	EnvLogLevel          = "SXM2HLS_LOG_LEVEL"
	EnvTracingEnabled    = "SXM2HLS_TRACING_ENABLED"
	EnvTracingExporter   = "SXM2HLS_TRACING_EXPORTER"
	EnvTracingEndpoint   = "SXM2HLS_TRACING_ENDPOINT"
	EnvTracingSampling   = "SXM2HLS_TRACING_SAMPLING_RATE"
)

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseEnv(key, defaultValue, func(v string) (string, error) { return v, nil }, logString)
}

// ParseInt reads an integer from environment variable or returns default value.
// It falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi, func(e *zerolog.Event, k string, v int) *zerolog.Event {
		return e.Int(k, v)
	})
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, time.ParseDuration, func(e *zerolog.Event, k string, v time.Duration) *zerolog.Event {
		return e.Dur(k, v)
	})
}

// ParseBool accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, parseBool, func(e *zerolog.Event, k string, v bool) *zerolog.Event {
		return e.Bool(k, v)
	})
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) },
		func(e *zerolog.Event, k string, v float64) *zerolog.Event { return e.Float64(k, v) })
}

func logString(e *zerolog.Event, k, v string) *zerolog.Event { return e.Str(k, v) }

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

// parseEnv is shared by the Parse helpers. Empty variables count as unset.
// Values of sensitive keys are never logged.
func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error), field func(*zerolog.Event, string, T) *zerolog.Event) T {
	logger := log.WithComponent("config")
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		ev := logger.Debug().Str("key", key).Str("source", "default")
		if !sensitive(key) {
			ev = field(ev, "default", defaultValue)
		}
		ev.Msg("using default value")
		return defaultValue
	}
	value, err := parse(raw)
	if err != nil {
		ev := logger.Warn().Str("key", key)
		if !sensitive(key) {
			ev = ev.Str("value", raw)
		}
		ev.Msg("invalid value in environment variable, using default")
		return defaultValue
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if sensitive(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = field(ev, "value", value)
	}
	ev.Msg("using environment variable")
	return value
}

func sensitive(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "token") || strings.Contains(lower, "password")
}

// mergeEnv applies environment overrides on top of cfg.
func mergeEnv(cfg *AppConfig) {
	cfg.Account.Username = ParseString(EnvUsername, cfg.Account.Username)
	cfg.Account.Password = ParseString(EnvPassword, cfg.Account.Password)
	cfg.Listen.IP = ParseString(EnvListenIP, cfg.Listen.IP)
	cfg.Listen.Port = ParseInt(EnvListenPort, cfg.Listen.Port)
	cfg.Upstream.BaseURL = ParseString(EnvUpstreamURL, cfg.Upstream.BaseURL)
	cfg.Upstream.CDNURL = ParseString(EnvCDNURL, cfg.Upstream.CDNURL)
	cfg.Upstream.UserAgent = ParseString(EnvUserAgent, cfg.Upstream.UserAgent)
	cfg.Upstream.RateLimit = ParseFloat(EnvUpstreamRateLimit, cfg.Upstream.RateLimit)
	cfg.Upstream.RateBurst = ParseInt(EnvUpstreamRateBurst, cfg.Upstream.RateBurst)
	cfg.Upstream.Timeout = ParseDuration(EnvUpstreamTimeout, cfg.Upstream.Timeout)
	cfg.Stream.Bitrate = ParseString(EnvBitrate, cfg.Stream.Bitrate)
	cfg.Relay.RateLimit = ParseInt(EnvRelayRateLimit, cfg.Relay.RateLimit)
	cfg.Admin.ListenAddr = ParseString(EnvAdminListen, cfg.Admin.ListenAddr)
	cfg.PlaylistPath = ParseString(EnvPlaylistPath, cfg.PlaylistPath)
	cfg.LogLevel = ParseString(EnvLogLevel, cfg.LogLevel)
	cfg.Tracing.Enabled = ParseBool(EnvTracingEnabled, cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = ParseString(EnvTracingExporter, cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = ParseString(EnvTracingEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = ParseFloat(EnvTracingSampling, cfg.Tracing.SamplingRate)
}
