// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"github.com/stretchr/testify/require"
)

func TestHTTPAttributes(t *testing.T) {
	attrs := HTTPAttributes("POST", "tune", "api.example/playback/play/v1/tuneSource", 201)
	require.Len(t, attrs, 4)
	assert.Equal(t, HTTPMethodKey, string(attrs[0].Key))
	assert.Equal(t, "POST", attrs[0].Value.AsString())
	assert.Equal(t, int64(201), attrs[3].Value.AsInt64())
}

func TestChannelAttributes(t *testing.T) {
	attrs := ChannelAttributes("42", true)
	require.Len(t, attrs, 2)
	assert.Equal(t, "42", attrs[0].Value.AsString())
	assert.True(t, attrs[1].Value.AsBool())
}

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestUnsupportedExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ExporterType: "zipkin", ServiceName: "x"})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	tests := []struct {
		name         string
		in           Config
		wantExporter string
		wantEndpoint string
	}{
		{"empty", Config{}, ExporterHTTP, DefaultHTTPEndpoint},
		{"grpc", Config{ExporterType: ExporterGRPC}, ExporterGRPC, DefaultGRPCEndpoint},
		{"explicit endpoint", Config{ExporterType: ExporterGRPC, Endpoint: "otel:4317"}, ExporterGRPC, "otel:4317"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.withDefaults()
			assert.Equal(t, DefaultServiceName, got.ServiceName)
			assert.Equal(t, tt.wantExporter, got.ExporterType)
			assert.Equal(t, tt.wantEndpoint, got.Endpoint)
		})
	}
}

func TestResourceAttributesNameRelay(t *testing.T) {
	attrs := resourceAttributes(Config{ServiceName: DefaultServiceName, ServiceVersion: "v0.1.0", RelayListen: "0.0.0.0:9999"})
	require.Len(t, attrs, 3)
	assert.Equal(t, DefaultServiceName, attrs[0].Value.AsString())
	assert.Equal(t, RelayListenKey, string(attrs[2].Key))
	assert.Equal(t, "0.0.0.0:9999", attrs[2].Value.AsString())

	assert.Len(t, resourceAttributes(Config{ServiceName: "x"}), 2)
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), samplerFor(0.25).Description())
}
