// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package relay serves the master playlist, per-channel media playlists,
// audio segments and the decryption key to HLS players.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/sxm2hls/internal/catalog"
	"github.com/ManuGH/sxm2hls/internal/key"
	"github.com/ManuGH/sxm2hls/internal/middleware"
	"github.com/ManuGH/sxm2hls/internal/tuner"
)

// Catalog supplies the channel list.
type Catalog interface {
	Channels(ctx context.Context) ([]catalog.Channel, error)
}

// Tuner resolves channel ids to stream locations.
type Tuner interface {
	StreamInfo(ctx context.Context, channelID string) (tuner.StreamInfo, error)
	Has(channelID string) bool
}

// Fetcher downloads CDN resources with the session credential.
type Fetcher interface {
	Fetch(ctx context.Context, operation, rawURL string) ([]byte, error)
}

// Config holds the configuration for the relay server.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "0.0.0.0:9999").
	ListenAddr string

	Catalog  Catalog
	Tuner    Tuner
	Upstream Fetcher

	// Key is served verbatim at /key/1.
	Key key.DecryptionKey
	// UpstreamKeyURL is the absolute key URL media playlists reference.
	UpstreamKeyURL string

	// RateLimitPerMinute limits requests per client IP; 0 disables.
	RateLimitPerMinute int

	Logger zerolog.Logger
}

// Server is the relay HTTP server.
type Server struct {
	addr       string
	catalog    Catalog
	tuner      Tuner
	upstream   Fetcher
	key        key.DecryptionKey
	keyURL     string
	logger     zerolog.Logger
	handler    http.Handler
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New creates a relay server. It does not listen until Start.
func New(cfg Config) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if cfg.Catalog == nil || cfg.Tuner == nil || cfg.Upstream == nil {
		return nil, fmt.Errorf("catalog, tuner and upstream are required")
	}
	if len(cfg.Key) == 0 {
		return nil, fmt.Errorf("decryption key is required")
	}

	s := &Server{
		addr:     cfg.ListenAddr,
		catalog:  cfg.Catalog,
		tuner:    cfg.Tuner,
		upstream: cfg.Upstream,
		key:      cfg.Key,
		keyURL:   cfg.UpstreamKeyURL,
		logger:   cfg.Logger,
	}
	s.handler = s.routes(cfg.RateLimitPerMinute)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // segments stream at line rate
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s, nil
}

func (s *Server) routes(rateLimit int) http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:      true,
		Route:              func(r *http.Request) string { return classify(r.URL.Path).kind.String() },
		EnableLogging:      true,
		RateLimitPerMinute: rateLimit,
	})
	r.Get("/*", s.serve)
	r.Head("/*", s.serve)
	r.NotFound(s.fail)
	r.MethodNotAllowed(s.fail)
	return r
}

// Handler returns the relay's HTTP handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("relay listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("starting relay server (HTTP)")
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("relay server failed: %w", err)
	}
	return nil
}

// Addr returns the bound address once Start is listening, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully shuts down the relay server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down relay server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, route{}, ErrNotFound)
}
