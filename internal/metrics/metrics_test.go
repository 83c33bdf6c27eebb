// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAuthStep(t *testing.T) {
	before := testutil.ToFloat64(AuthStepTotal.WithLabelValues("device.register", "failure"))
	RecordAuthStep("device.register", "failure")
	assert.Equal(t, before+1, testutil.ToFloat64(AuthStepTotal.WithLabelValues("device.register", "failure")))
}

func TestRecordReauthentication(t *testing.T) {
	before := testutil.ToFloat64(ReauthenticationTotal)
	RecordReauthentication()
	assert.Equal(t, before+1, testutil.ToFloat64(ReauthenticationTotal))
}

func TestRecordCacheLookup(t *testing.T) {
	hit := testutil.ToFloat64(CacheLookupTotal.WithLabelValues("test", "hit"))
	miss := testutil.ToFloat64(CacheLookupTotal.WithLabelValues("test", "miss"))

	RecordCacheLookup("test", true)
	RecordCacheLookup("test", false)
	RecordCacheLookup("test", false)

	assert.Equal(t, hit+1, testutil.ToFloat64(CacheLookupTotal.WithLabelValues("test", "hit")))
	assert.Equal(t, miss+2, testutil.ToFloat64(CacheLookupTotal.WithLabelValues("test", "miss")))
}

func TestObserveResolutionAndEntries(t *testing.T) {
	ObserveResolution("test-resolution", true, 120*time.Millisecond)
	ObserveResolution("test-resolution", false, time.Second)
	assert.Equal(t, 2, testutil.CollectAndCount(ResolutionDuration, "sxm2hls_resolution_duration_seconds"))

	SetCacheEntries("test", 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(CacheEntries.WithLabelValues("test")))
}
