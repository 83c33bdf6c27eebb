// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sxm2hls/internal/config"
	"github.com/ManuGH/sxm2hls/internal/key"
	"github.com/ManuGH/sxm2hls/internal/upstream/upstreamtest"
)

const catalogPath = "/browse/v1/pages/curated-grouping/403ab6a5-d3c9-4c2a-a722-a94a6a5fd056/view"

func newUpstream(t *testing.T) *upstreamtest.Server {
	t.Helper()
	srv := upstreamtest.New()
	t.Cleanup(srv.Close)
	srv.HandleLoginChain("tok")
	srv.HandleJSON("/"+key.Path, http.StatusOK, map[string]string{
		"key": base64.StdEncoding.EncodeToString([]byte("0123456789abcdef")),
	})
	srv.HandleJSON(catalogPath, http.StatusOK, map[string]any{
		"page": map[string]any{"containers": []any{map[string]any{"sets": []any{map[string]any{
			"items": []any{map[string]any{
				"entity": map[string]any{
					"id":    "42",
					"texts": map[string]any{"title": map[string]any{"default": "Hits 1"}},
				},
				"decorations": map[string]any{"genre": "Pop"},
			}},
			"pagination": map[string]any{"offset": map[string]any{"size": 1}},
		}}}}},
	})
	return srv
}

func testConfig(srv *upstreamtest.Server) config.AppConfig {
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.Account = config.AccountConfig{Username: "u", Password: "p"}
	cfg.Listen = config.ListenConfig{IP: "127.0.0.1", Port: 1}
	cfg.Upstream.BaseURL = srv.BaseURL()
	cfg.Upstream.RateLimit = 0
	return cfg
}

func TestBootstrapWiresComponents(t *testing.T) {
	srv := newUpstream(t)
	cfg := testConfig(srv)
	cfg.PlaylistPath = filepath.Join(t.TempDir(), "channels.m3u")

	c, err := Bootstrap(context.Background(), cfg, Options{})
	require.NoError(t, err)

	assert.Equal(t, key.DecryptionKey("0123456789abcdef"), c.Key)
	assert.True(t, c.Session.Authenticated())
	assert.True(t, c.Catalog.Loaded(), "catalog is warmed at startup")
	assert.Equal(t, 1, srv.Calls(catalogPath))

	exported, err := os.ReadFile(cfg.PlaylistPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(exported), "#EXTM3U\n#EXTINF:-1 tvg-logo=\"https://imgsrv-sxm-prod-device.streaming.siriusxm.com/"))
	assert.True(t, strings.HasSuffix(string(exported), "group-title=\"Pop\",Hits 1\n/listen/42"))

	rec := httptest.NewRecorder()
	c.Relay.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/key/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0123456789abcdef", rec.Body.String())

	resp := c.Health.Evaluate(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, "healthy", string(resp.Status))
}

func TestBootstrapKeyFailureIsFatal(t *testing.T) {
	srv := newUpstream(t)
	srv.HandleText("/"+key.Path, http.StatusInternalServerError, "")

	_, err := Bootstrap(context.Background(), testConfig(srv), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKeyUnavailable))
}

func TestBootstrapLoginFailureIsFatal(t *testing.T) {
	srv := newUpstream(t)
	srv.HandleText(upstreamtest.PathPassword, http.StatusUnauthorized, "")

	_, err := Bootstrap(context.Background(), testConfig(srv), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKeyUnavailable))
}

func TestBootstrapCatalogWarmupIsBestEffort(t *testing.T) {
	srv := newUpstream(t)
	srv.HandleText(catalogPath, http.StatusBadGateway, "")
	cfg := testConfig(srv)
	cfg.PlaylistPath = filepath.Join(t.TempDir(), "channels.m3u")

	c, err := Bootstrap(context.Background(), cfg, Options{})
	require.NoError(t, err)
	assert.False(t, c.Catalog.Loaded())
	assert.NoFileExists(t, cfg.PlaylistPath)

	resp := c.Health.Evaluate(context.Background())
	assert.True(t, resp.Ready, "a missing catalog only degrades")
	assert.Equal(t, "degraded", string(resp.Status))

	srv.HandleJSON(catalogPath, http.StatusOK, map[string]any{
		"page": map[string]any{"containers": []any{map[string]any{"sets": []any{map[string]any{
			"items":      []any{},
			"pagination": map[string]any{"offset": map[string]any{"size": 0}},
		}}}}},
	})
	rec := httptest.NewRecorder()
	c.Relay.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlist.m3u8", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "#EXTM3U"))
	assert.True(t, c.Catalog.Loaded())
}
