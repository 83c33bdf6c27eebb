// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package tuner resolves channel ids to CDN stream locations and remembers
// each resolution until the process exits.
package tuner

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	xglog "github.com/ManuGH/sxm2hls/internal/log"
	"github.com/ManuGH/sxm2hls/internal/metrics"
	"github.com/ManuGH/sxm2hls/internal/upstream"
)

const (
	tunePath  = "playback/play/v1/tuneSource"
	cacheName = "tuner"
)

// Client performs authenticated API calls and CDN fetches.
type Client interface {
	DoJSON(ctx context.Context, req upstream.Request, out any) error
	Fetch(ctx context.Context, operation, rawURL string) ([]byte, error)
}

type tuneRequest struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	HLSVersion      string `json:"hlsVersion"`
	ManifestVariant string `json:"manifestVariant"`
	MTCVersion      string `json:"mtcVersion"`
}

type tuneResponse struct {
	Streams []struct {
		URLs []struct {
			URL string `json:"url"`
		} `json:"urls"`
	} `json:"streams"`
}

// Cache maps channel ids to StreamInfo. Entries are never refreshed; Forget
// is the only eviction.
type Cache struct {
	client Client
	policy VariantPolicy
	logger zerolog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	streams map[string]StreamInfo
}

// New creates an empty Cache selecting variants with policy.
func New(client Client, policy VariantPolicy) *Cache {
	return &Cache{
		client:  client,
		policy:  policy,
		logger:  xglog.WithComponent("tuner"),
		streams: make(map[string]StreamInfo),
	}
}

// StreamInfo returns the cached resolution for channelID, resolving it on the
// first request. Concurrent first requests for one id share a single tune.
func (c *Cache) StreamInfo(ctx context.Context, channelID string) (StreamInfo, error) {
	if info, ok := c.lookup(channelID); ok {
		metrics.RecordCacheLookup(cacheName, true)
		return info, nil
	}
	metrics.RecordCacheLookup(cacheName, false)

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(channelID, func() (any, error) {
		if info, ok := c.lookup(channelID); ok {
			return info, nil
		}
		return c.resolve(detached, channelID)
	})

	select {
	case <-ctx.Done():
		return StreamInfo{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return StreamInfo{}, res.Err
		}
		return res.Val.(StreamInfo), nil
	}
}

// Forget drops the cached resolution of channelID.
func (c *Cache) Forget(channelID string) {
	c.mu.Lock()
	delete(c.streams, channelID)
	n := len(c.streams)
	c.mu.Unlock()
	metrics.SetCacheEntries(cacheName, n)
}

// Has reports whether channelID is already resolved.
func (c *Cache) Has(channelID string) bool {
	_, ok := c.lookup(channelID)
	return ok
}

// Len returns the number of cached resolutions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.streams)
}

func (c *Cache) lookup(channelID string) (StreamInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.streams[channelID]
	return info, ok
}

func (c *Cache) resolve(ctx context.Context, channelID string) (StreamInfo, error) {
	logger := c.logger.With().Str(xglog.FieldChannelID, channelID).Logger()
	start := time.Now()
	info, err := c.tune(ctx, channelID)
	metrics.ObserveResolution(cacheName, err == nil, time.Since(start))
	if err != nil {
		logger.Warn().Err(err).Str(xglog.FieldEvent, "tuner.resolve_failed").Msg("stream resolution failed")
		return StreamInfo{}, err
	}

	c.mu.Lock()
	c.streams[channelID] = info
	n := len(c.streams)
	c.mu.Unlock()

	metrics.SetCacheEntries(cacheName, n)
	logger.Info().
		Str(xglog.FieldEvent, "tuner.resolved").
		Str("variant", info.QualityPlaylistPath).
		Int64(xglog.FieldDuration, time.Since(start).Milliseconds()).
		Msg("stream resolved")
	return info, nil
}

func (c *Cache) tune(ctx context.Context, channelID string) (StreamInfo, error) {
	var resp tuneResponse
	err := c.client.DoJSON(ctx, upstream.Request{
		Operation: "tune",
		Method:    http.MethodPost,
		Path:      tunePath,
		Body: tuneRequest{
			ID:              channelID,
			Type:            "channel-linear",
			HLSVersion:      "V3",
			ManifestVariant: "WEB",
			MTCVersion:      "V2",
		},
	}, &resp)
	if err != nil {
		return StreamInfo{}, err
	}
	if len(resp.Streams) == 0 || len(resp.Streams[0].URLs) == 0 || resp.Streams[0].URLs[0].URL == "" {
		return StreamInfo{}, upstream.NewError(upstream.ErrResolution, "tune", 0, fmt.Errorf("channel %s: no stream URL", channelID))
	}
	primary := resp.Streams[0].URLs[0].URL

	base, name, prefix, err := splitPrimary(primary)
	if err != nil {
		return StreamInfo{}, upstream.NewError(upstream.ErrResolution, "tune", 0, err)
	}

	body, err := c.client.Fetch(ctx, "playlist.master", primary)
	if err != nil {
		return StreamInfo{}, err
	}
	variant, ok := SelectVariant(body, c.policy)
	if !ok {
		return StreamInfo{}, upstream.NewError(upstream.ErrResolution, "playlist.master", 0,
			fmt.Errorf("channel %s: no %q variant", channelID, c.policy.Bitrate))
	}

	return StreamInfo{
		ChannelID:           channelID,
		BaseURL:             base,
		PlaylistName:        name,
		QualityPlaylistPath: variant,
		SegmentPathPrefix:   prefix,
		HLSTag:              hlsTag(variant),
	}, nil
}
