// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/sxm2hls/internal/log"
)

// DefaultShutdownTimeout bounds graceful shutdown of all servers and hooks.
const DefaultShutdownTimeout = 15 * time.Second

// ShutdownHook is a function that performs cleanup during graceful shutdown.
// Hooks are executed in reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// RelayServer is the player-facing server run by the manager.
type RelayServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// Manager runs the relay and the optional admin server until shutdown.
type Manager struct {
	relay           RelayServer
	adminAddr       string
	adminHandler    http.Handler
	shutdownTimeout time.Duration
	logger          zerolog.Logger

	mu            sync.Mutex
	adminServer   *http.Server
	adminListener net.Listener
	shutdownHooks []namedHook
	started       bool
	stopping      bool
}

type namedHook struct {
	name string
	hook ShutdownHook
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Relay RelayServer
	// AdminAddr enables the admin listener when set.
	AdminAddr       string
	AdminHandler    http.Handler
	ShutdownTimeout time.Duration
}

// NewManager creates a manager for the given servers.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Relay == nil {
		return nil, ErrMissingRelay
	}
	if cfg.AdminAddr != "" && cfg.AdminHandler == nil {
		return nil, fmt.Errorf("admin handler is required when admin listener is enabled")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Manager{
		relay:           cfg.Relay,
		adminAddr:       cfg.AdminAddr,
		adminHandler:    cfg.AdminHandler,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          xglog.WithComponent("manager"),
	}, nil
}

// Start starts all configured servers and blocks until ctx is cancelled or a
// server fails. Either way the servers are shut down before it returns.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("manager already started")
	}
	m.started = true
	m.mu.Unlock()

	errChan := make(chan error, 2)

	if m.adminAddr != "" {
		if err := m.startAdminServer(errChan); err != nil {
			return err
		}
	}

	go func() {
		if err := m.relay.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		m.logger.Error().Err(err).Str(xglog.FieldEvent, "server.failed").Msg("server error, initiating shutdown")
		if shutdownErr := m.Shutdown(ctx); shutdownErr != nil {
			return fmt.Errorf("server error and shutdown failure: %w", errors.Join(err, shutdownErr))
		}
		return err
	case <-ctx.Done():
		m.logger.Info().Str(xglog.FieldEvent, "shutdown.signal").Msg("shutdown signal received")
		return m.Shutdown(ctx)
	}
}

func (m *Manager) startAdminServer(errChan chan<- error) error {
	ln, err := net.Listen("tcp", m.adminAddr)
	if err != nil {
		return fmt.Errorf("admin listen on %s: %w", m.adminAddr, err)
	}
	srv := &http.Server{
		Handler:           m.adminHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.mu.Lock()
	m.adminServer = srv
	m.adminListener = ln
	m.mu.Unlock()

	go func() {
		m.logger.Info().Str("addr", ln.Addr().String()).Msg("admin server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("admin server: %w", err)
		}
	}()
	return nil
}

// AdminAddr returns the bound admin address, or "" when the admin listener is off.
func (m *Manager) AdminAddr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.adminListener == nil {
		return ""
	}
	return m.adminListener.Addr().String()
}

// Shutdown stops the servers and runs the shutdown hooks. Only the first call
// does work; ctx cancellation does not cut it short, the timeout does.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	adminServer := m.adminServer
	hooks := append([]namedHook(nil), m.shutdownHooks...)
	m.mu.Unlock()

	m.logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := m.relay.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("relay server shutdown: %w", err))
	}
	if adminServer != nil {
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}

	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		hookStart := time.Now()
		if err := hook.hook(shutdownCtx); err != nil {
			m.logger.Error().
				Err(err).
				Str("hook", hook.name).
				Dur(xglog.FieldDuration, time.Since(hookStart)).
				Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", hook.name, err))
			continue
		}
		m.logger.Debug().
			Str("hook", hook.name).
			Dur(xglog.FieldDuration, time.Since(hookStart)).
			Msg("shutdown hook completed")
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	m.logger.Info().Msg("stopped cleanly")
	return nil
}

// RegisterShutdownHook registers a cleanup function to be called during shutdown.
func (m *Manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownHooks = append(m.shutdownHooks, namedHook{name: name, hook: hook})
}
