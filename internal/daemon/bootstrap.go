// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon wires the relay components together and owns their lifecycle.
package daemon

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/sxm2hls/internal/catalog"
	"github.com/ManuGH/sxm2hls/internal/config"
	"github.com/ManuGH/sxm2hls/internal/health"
	xglog "github.com/ManuGH/sxm2hls/internal/log"
	"github.com/ManuGH/sxm2hls/internal/key"
	"github.com/ManuGH/sxm2hls/internal/playlist"
	"github.com/ManuGH/sxm2hls/internal/relay"
	"github.com/ManuGH/sxm2hls/internal/session"
	"github.com/ManuGH/sxm2hls/internal/tuner"
	"github.com/ManuGH/sxm2hls/internal/upstream"
)

// Components are the wired runtime pieces of one relay process.
type Components struct {
	Upstream *upstream.Client
	Session  *session.Authenticator
	Catalog  *catalog.Cache
	Tuner    *tuner.Cache
	Key      key.DecryptionKey
	Relay    *relay.Server
	Health   *health.Manager
}

// Options overrides process-level collaborators, mainly for tests.
type Options struct {
	// HTTPClient replaces the upstream HTTP client.
	HTTPClient *http.Client
}

// Bootstrap builds every component from cfg. It authenticates and fetches the
// decryption key; failure there is fatal. The catalog warm-up and playlist
// export are best-effort.
func Bootstrap(ctx context.Context, cfg config.AppConfig, opts Options) (*Components, error) {
	logger := xglog.WithComponent("daemon")

	limit := rate.Limit(cfg.Upstream.RateLimit)
	if cfg.Upstream.RateLimit == 0 {
		limit = rate.Inf
	}
	client, err := upstream.New(cfg.Upstream.BaseURL, upstream.Options{
		Timeout:        cfg.Upstream.Timeout,
		UserAgent:      cfg.Upstream.UserAgent,
		RateLimit:      limit,
		RateLimitBurst: cfg.Upstream.RateBurst,
		HTTPClient:     opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	auth := session.New(client, session.Credentials{
		Username: cfg.Account.Username,
		Password: cfg.Account.Password,
	})

	decryptionKey, err := key.Fetch(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyUnavailable, err)
	}
	logger.Info().Str(xglog.FieldEvent, "key.loaded").Int(xglog.FieldBytes, len(decryptionKey)).Msg("decryption key loaded")

	c := &Components{
		Upstream: client,
		Session:  auth,
		Catalog:  catalog.New(auth, catalog.Options{CDNTemplate: cfg.Upstream.CDNURL}),
		Tuner:    tuner.New(auth, tuner.VariantPolicy{Bitrate: cfg.Stream.Bitrate}),
		Key:      decryptionKey,
	}

	c.Relay, err = relay.New(relay.Config{
		ListenAddr:         cfg.RelayAddr(),
		Catalog:            c.Catalog,
		Tuner:              c.Tuner,
		Upstream:           auth,
		Key:                decryptionKey,
		UpstreamKeyURL:     client.Resolve(key.Path),
		RateLimitPerMinute: cfg.Relay.RateLimit,
		Logger:             xglog.WithComponent("relay"),
	})
	if err != nil {
		return nil, fmt.Errorf("create relay server: %w", err)
	}

	c.Health = newHealthManager(cfg.Version, c)

	warmCatalog(ctx, c.Catalog, cfg.PlaylistPath, logger)
	return c, nil
}

// warmCatalog loads the catalog once and exports the master playlist when a
// path is configured. A failure only delays loading until the first request.
func warmCatalog(ctx context.Context, cat *catalog.Cache, playlistPath string, logger zerolog.Logger) {
	channels, err := cat.Channels(ctx)
	if err != nil {
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "catalog.warmup_failed").
			Msg("catalog warm-up failed, first playlist request will retry")
		return
	}
	logger.Info().
		Str(xglog.FieldEvent, "catalog.warmup").
		Int(xglog.FieldCount, len(channels)).
		Msg("catalog loaded")

	if playlistPath == "" {
		return
	}
	if err := playlist.WriteFile(playlistPath, playlist.Items(channels), logger); err != nil {
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "playlist.export_failed").
			Str(xglog.FieldPath, playlistPath).
			Msg("master playlist export failed")
		return
	}
	logger.Info().
		Str(xglog.FieldEvent, "playlist.exported").
		Str(xglog.FieldPath, playlistPath).
		Int(xglog.FieldCount, len(channels)).
		Msg("master playlist exported")
}

func newHealthManager(version string, c *Components) *health.Manager {
	hm := health.NewManager(version)
	hm.RegisterChecker(health.FlagChecker("session", c.Session.Authenticated, health.StatusDegraded, "not authenticated, next request re-authenticates"))
	hm.RegisterChecker(health.FlagChecker("catalog", c.Catalog.Loaded, health.StatusDegraded, "catalog not loaded yet"))
	hm.RegisterChecker(health.FlagChecker("key", func() bool { return len(c.Key) > 0 }, health.StatusUnhealthy, "decryption key missing"))
	return hm
}
