// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	xglog "github.com/ManuGH/sxm2hls/internal/log"
)

func TestParseHelpers(t *testing.T) {
	t.Setenv("SXM2HLS_TEST_STRING", "value")
	t.Setenv("SXM2HLS_TEST_EMPTY", "")
	t.Setenv("SXM2HLS_TEST_INT", "42")
	t.Setenv("SXM2HLS_TEST_BAD_INT", "forty-two")
	t.Setenv("SXM2HLS_TEST_DURATION", "1m30s")
	t.Setenv("SXM2HLS_TEST_BOOL", "YES")
	t.Setenv("SXM2HLS_TEST_BAD_BOOL", "maybe")
	t.Setenv("SXM2HLS_TEST_FLOAT", "0.25")

	assert.Equal(t, "value", ParseString("SXM2HLS_TEST_STRING", "d"))
	assert.Equal(t, "d", ParseString("SXM2HLS_TEST_EMPTY", "d"))
	assert.Equal(t, "d", ParseString("SXM2HLS_TEST_UNSET", "d"))
	assert.Equal(t, 42, ParseInt("SXM2HLS_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("SXM2HLS_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, ParseDuration("SXM2HLS_TEST_DURATION", time.Second))
	assert.True(t, ParseBool("SXM2HLS_TEST_BOOL", false))
	assert.True(t, ParseBool("SXM2HLS_TEST_BAD_BOOL", true))
	assert.InDelta(t, 0.25, ParseFloat("SXM2HLS_TEST_FLOAT", 1), 1e-9)
}

func TestParseStringHidesSensitiveValues(t *testing.T) {
	var buf bytes.Buffer
	xglog.Configure(xglog.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { xglog.Configure(xglog.Config{Level: "info"}) })

	t.Setenv(EnvPassword, "hunter2")
	assert.Equal(t, "hunter2", ParseString(EnvPassword, "file-secret"))
	t.Setenv(EnvPassword, "")
	assert.Equal(t, "file-secret", ParseString(EnvPassword, "file-secret"))

	out := buf.String()
	assert.Contains(t, out, EnvPassword)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "file-secret")
}
