// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Upstream attributes
	UpstreamOperationKey = "upstream.operation"

	// Relay attributes
	ChannelIDKey = "relay.channel_id"
	CacheHitKey  = "relay.cache_hit"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ChannelAttributes creates relay span attributes for a channel lookup.
func ChannelAttributes(channelID string, cacheHit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ChannelIDKey, channelID),
		attribute.Bool(CacheHitKey, cacheHit),
	}
}
