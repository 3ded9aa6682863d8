// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/reelpick/internal/api"
	"github.com/tomtom215/reelpick/internal/config"
	"github.com/tomtom215/reelpick/internal/feed"
	"github.com/tomtom215/reelpick/internal/logging"
	"github.com/tomtom215/reelpick/internal/normalize"
	"github.com/tomtom215/reelpick/internal/recommender"
	"github.com/tomtom215/reelpick/internal/session"
	"github.com/tomtom215/reelpick/internal/supervisor"
	"github.com/tomtom215/reelpick/internal/supervisor/services"
	ws "github.com/tomtom215/reelpick/internal/websocket"
)

func runServe(cfg *config.Config) error {
	logging.Info().
		Str("recommender_url", cfg.Recommender.URL).
		Str("addr", cfg.Server.Address()).
		Bool("breaker", cfg.Recommender.Breaker.Enabled).
		Msg("Starting Reelpick serve")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	svc := recommender.New(&cfg.Recommender)
	display := normalize.Options{FallbackPoster: cfg.Display.FallbackPoster}
	sess := session.NewController(svc, session.Options{Display: display})
	listing := feed.NewController(svc, display)
	hub := ws.NewHub()

	deps := api.Dependencies{
		Session: sess,
		Feed:    listing,
		Hub:     hub,
		Config:  cfg,
		Version: version,
	}
	if breaker, ok := svc.(*recommender.BreakerClient); ok {
		deps.Breaker = breaker
	}
	router := api.NewRouter(api.NewHandler(deps), api.ChiMiddlewareConfigFromServer(&cfg.Server))

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddSessionService(services.NewSessionService(sess, hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		<-errCh
	case serveErr = <-errCh:
		if errors.Is(serveErr, context.Canceled) {
			serveErr = nil
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, s := range unstopped {
			logging.Warn().Str("service", s.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Reelpick stopped")
	return serveErr
}
