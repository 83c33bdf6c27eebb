// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/sxm2hls/internal/config"
	xglog "github.com/ManuGH/sxm2hls/internal/log"
	"github.com/ManuGH/sxm2hls/internal/session"
)

// Server is the lifecycle the App drives; *Manager implements it.
type Server interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// CredentialSink receives account credential changes from config reloads.
type CredentialSink interface {
	SetCredentials(creds session.Credentials)
}

// App owns the long-lived runtime lifecycle (config watcher, reload wiring)
// and delegates server management to a Server.
type App struct {
	logger       zerolog.Logger
	server       Server
	cfgHolder    *config.Holder
	credentials  CredentialSink
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. cfgHolder and credentials may be nil.
func NewApp(server Server, cfgHolder *config.Holder, credentials CredentialSink) *App {
	return &App{
		logger:       xglog.WithComponent("daemon"),
		server:       server,
		cfgHolder:    cfgHolder,
		credentials:  credentials,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
		}
		defer a.cfgHolder.Stop()

		if a.credentials != nil {
			updates := make(chan config.AppConfig, 1)
			a.cfgHolder.RegisterListener(updates)
			g.Go(func() error {
				a.applyCredentials(ctx, updates)
				return nil
			})
		}

		if a.reloadSignal != nil {
			g.Go(func() error {
				a.reloadOnSignal(ctx)
				return nil
			})
		}
	}

	g.Go(func() error {
		return a.server.Start(ctx)
	})

	return g.Wait()
}

func (a *App) applyCredentials(ctx context.Context, updates <-chan config.AppConfig) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-updates:
			a.credentials.SetCredentials(session.Credentials{
				Username: cfg.Account.Username,
				Password: cfg.Account.Password,
			})
		}
	}
}

func (a *App) reloadOnSignal(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, a.reloadSignal)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			a.logger.Info().
				Str(xglog.FieldEvent, "config.reload_signal").
				Str("signal", a.reloadSignal.String()).
				Msg("received reload signal, reloading config")
			if err := a.cfgHolder.Reload(ctx); err != nil {
				a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.reload_failed").Msg("config reload failed")
			}
		}
	}
}
