// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/sxm2hls/internal/config"
	"github.com/ManuGH/sxm2hls/internal/daemon"
	xglog "github.com/ManuGH/sxm2hls/internal/log"
	"github.com/ManuGH/sxm2hls/internal/telemetry"
	"github.com/ManuGH/sxm2hls/internal/version"
)

const serviceName = "sxm2hls"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until the configuration is loaded.
	xglog.Configure(xglog.Config{Level: "info", Service: serviceName, Version: version.Version})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(strings.TrimSpace(*configPath), version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str(xglog.FieldPath, loader.Path()).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: serviceName, Version: cfg.Version})
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if cfg.ConfigPath != "" {
		source = "file"
	}
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", source).
		Str(xglog.FieldPath, cfg.ConfigPath).
		Str("listen", cfg.RelayAddr()).
		Str(xglog.FieldBaseURL, cfg.Upstream.BaseURL).
		Msg("configuration loaded")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		RelayListen:    cfg.RelayAddr(),
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).Str(xglog.FieldEvent, "telemetry.init_failed").Msg("tracing disabled")
	}

	components, err := daemon.Bootstrap(ctx, cfg, daemon.Options{})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "startup.failed").
			Msg("failed to start relay")
	}

	managerCfg := daemon.ManagerConfig{Relay: components.Relay}
	if cfg.Admin.ListenAddr != "" {
		managerCfg.AdminAddr = cfg.Admin.ListenAddr
		managerCfg.AdminHandler = daemon.AdminHandler(components.Health)
	}
	mgr, err := daemon.NewManager(managerCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create daemon manager")
	}
	if tp != nil {
		mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	}

	app := daemon.NewApp(mgr, config.NewHolder(cfg, loader), components.Session)
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "daemon.failed").Msg("daemon exited with error")
		os.Exit(1)
	}
	logger.Info().Str(xglog.FieldEvent, "daemon.stopped").Msg("daemon stopped")
}
