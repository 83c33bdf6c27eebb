// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalog loads the full channel listing once and keeps it for the
// lifetime of the process.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	xglog "github.com/ManuGH/sxm2hls/internal/log"
	"github.com/ManuGH/sxm2hls/internal/metrics"
	"github.com/ManuGH/sxm2hls/internal/upstream"
)

// DefaultPageSize is the number of items requested per catalog page.
const DefaultPageSize = 50

const cacheName = "catalog"

// Channel is one entry of the catalog.
type Channel struct {
	ID          string
	Title       string
	Description string
	Genre       string
	LogoURL     string
	ListenPath  string
}

// Requester performs authenticated JSON API calls.
type Requester interface {
	DoJSON(ctx context.Context, req upstream.Request, out any) error
}

// Options configures a Cache.
type Options struct {
	// CDNTemplate is the image server URL with a "{}" placeholder.
	CDNTemplate string
	PageSize    int
}

// Cache holds the channel list after the first successful load.
type Cache struct {
	api         Requester
	cdnTemplate string
	pageSize    int
	logger      zerolog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	channels []Channel
	loaded   bool
}

// New creates an empty Cache.
func New(api Requester, opts Options) *Cache {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.CDNTemplate == "" {
		opts.CDNTemplate = DefaultCDNTemplate
	}
	return &Cache{
		api:         api,
		cdnTemplate: opts.CDNTemplate,
		pageSize:    opts.PageSize,
		logger:      xglog.WithComponent("catalog"),
	}
}

// Loaded reports whether the catalog has been fetched successfully.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Channels returns every channel in upstream order. The first successful call
// fetches all pages; failures are not cached. Concurrent first calls share one
// fetch, which keeps running if the caller that started it goes away.
func (c *Cache) Channels(ctx context.Context) ([]Channel, error) {
	if list, ok := c.cached(); ok {
		metrics.RecordCacheLookup(cacheName, true)
		return list, nil
	}
	metrics.RecordCacheLookup(cacheName, false)

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(cacheName, func() (any, error) {
		if list, ok := c.cached(); ok {
			return list, nil
		}
		return c.load(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]Channel)), nil
	}
}

func (c *Cache) cached() ([]Channel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return slices.Clone(c.channels), true
}

func (c *Cache) load(ctx context.Context) ([]Channel, error) {
	start := time.Now()
	list, err := c.fetchAll(ctx)
	metrics.ObserveResolution(cacheName, err == nil, time.Since(start))
	if err != nil {
		c.logger.Warn().Err(err).Str(xglog.FieldEvent, "catalog.load_failed").Msg("channel catalog could not be loaded")
		return nil, err
	}

	c.mu.Lock()
	c.channels = list
	c.loaded = true
	c.mu.Unlock()

	metrics.SetCacheEntries(cacheName, len(list))
	c.logger.Info().
		Str(xglog.FieldEvent, "catalog.loaded").
		Int(xglog.FieldCount, len(list)).
		Int64(xglog.FieldDuration, time.Since(start).Milliseconds()).
		Msg("channel catalog loaded")
	return list, nil
}

func (c *Cache) fetchAll(ctx context.Context) ([]Channel, error) {
	var first pageResponse
	err := c.api.DoJSON(ctx, upstream.Request{
		Operation: "catalog.page",
		Method:    http.MethodPost,
		Path:      pagePath,
		Body:      firstPageBody(c.pageSize),
	}, &first)
	if err != nil {
		return nil, err
	}
	if len(first.Page.Containers) == 0 || len(first.Page.Containers[0].Sets) == 0 {
		return nil, upstream.NewError(upstream.ErrResolution, "catalog.page", 0, fmt.Errorf("response has no item set"))
	}
	set := first.Page.Containers[0].Sets[0]
	total := set.Pagination.Offset.Size

	list := make([]Channel, 0, max(total, len(set.Items)))
	if list, err = c.appendItems(list, set.Items, "catalog.page"); err != nil {
		return nil, err
	}

	for offset := c.pageSize; offset < total; offset += c.pageSize {
		var next containerResponse
		err := c.api.DoJSON(ctx, upstream.Request{
			Operation: "catalog.container",
			Method:    http.MethodPost,
			Path:      containerPath,
			Body:      nextPageBody(offset, c.pageSize),
		}, &next)
		if err != nil {
			return nil, fmt.Errorf("catalog page at offset %d: %w", offset, err)
		}
		if len(next.Container.Sets) == 0 {
			return nil, upstream.NewError(upstream.ErrResolution, "catalog.container", 0, fmt.Errorf("offset %d: response has no item set", offset))
		}
		if list, err = c.appendItems(list, next.Container.Sets[0].Items, "catalog.container"); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (c *Cache) appendItems(list []Channel, items []item, operation string) ([]Channel, error) {
	for _, it := range items {
		id := it.Entity.ID
		if id == "" {
			return nil, upstream.NewError(upstream.ErrResolution, operation, 0, fmt.Errorf("catalog item without id"))
		}
		logo := it.Entity.Images.Tile.Square.Preferred
		list = append(list, Channel{
			ID:          id,
			Title:       it.Entity.Texts.Title.Default,
			Description: it.Entity.Texts.Description.Default,
			Genre:       it.Decorations.Genre,
			LogoURL:     LogoURL(c.cdnTemplate, logo.URL, logo.Width, logo.Height),
			ListenPath:  "/listen/" + id,
		})
	}
	return list, nil
}
