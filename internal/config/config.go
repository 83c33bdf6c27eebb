// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"net"
	"strconv"
	"time"
)

// Defaults.
const (
	DefaultListenIP      = "0.0.0.0"
	DefaultListenPort    = 9999
	DefaultUpstreamURL   = "https://api.edge-gateway.siriusxm.com/"
	DefaultCDNURL        = "https://imgsrv-sxm-prod-device.streaming.siriusxm.com/{}"
	DefaultRateLimit     = 10.0
	DefaultRateBurst     = 20
	DefaultBitrate       = "256k"
	DefaultLogLevel      = "info"
	DefaultTraceExporter = "http"
	DefaultSamplingRate  = 1.0
)

// AppConfig is the effective configuration after defaults, file and environment.
type AppConfig struct {
	Version    string
	ConfigPath string

	Account      AccountConfig
	Listen       ListenConfig
	Upstream     UpstreamConfig
	Stream       StreamConfig
	Relay        RelayConfig
	Admin        AdminConfig
	Tracing      TracingConfig
	PlaylistPath string
	LogLevel     string
}

// AccountConfig holds the streaming account credentials.
type AccountConfig struct {
	Username string
	Password string
}

// ListenConfig is the relay listen address.
type ListenConfig struct {
	IP   string
	Port int
}

// UpstreamConfig tunes the upstream API client.
type UpstreamConfig struct {
	BaseURL string
	// CDNURL is the image server template; "{}" is replaced by the encoded request.
	CDNURL string
	// UserAgent overrides the built-in desktop browser user agent when set.
	UserAgent string
	// RateLimit is requests per second towards the API; zero disables limiting.
	RateLimit float64
	RateBurst int
	Timeout   time.Duration
}

// StreamConfig selects the quality variant.
type StreamConfig struct {
	Bitrate string
}

// RelayConfig configures the player-facing server.
type RelayConfig struct {
	// RateLimit is requests per minute per client IP; zero disables limiting.
	RateLimit int
}

// AdminConfig configures the optional health/metrics listener.
type AdminConfig struct {
	ListenAddr string
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// Defaults returns the configuration used when neither file nor environment set a key.
func Defaults() AppConfig {
	return AppConfig{
		Listen: ListenConfig{IP: DefaultListenIP, Port: DefaultListenPort},
		Upstream: UpstreamConfig{
			BaseURL:   DefaultUpstreamURL,
			CDNURL:    DefaultCDNURL,
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
		},
		Stream:   StreamConfig{Bitrate: DefaultBitrate},
		LogLevel: DefaultLogLevel,
		Tracing: TracingConfig{
			Exporter:     DefaultTraceExporter,
			SamplingRate: DefaultSamplingRate,
		},
	}
}

// RelayAddr is the relay's host:port listen address.
func (c AppConfig) RelayAddr() string {
	return net.JoinHostPort(c.Listen.IP, strconv.Itoa(c.Listen.Port))
}
