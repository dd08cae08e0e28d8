// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shapecount/internal/cache"
	"shapecount/internal/content"
	"shapecount/internal/handlers"
	"shapecount/internal/middleware"
	"shapecount/internal/render"
	"shapecount/internal/router"
	"shapecount/internal/storage"
	"shapecount/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the web server: the four lesson pages, POST /upload for API
clients and POST /solve for the scanner page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		setupLogger(cfg.Server.Env, verbose)
		slog.Info("configuration loaded", "env", cfg.Server.Env, "addr", cfg.Addr())

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		renderer, err := render.New(cfg.IsDev())
		if err != nil {
			return fmt.Errorf("initializing template renderer: %w", err)
		}

		// Rendered lessons may be stale after a deploy.
		var contentRenderer *content.Renderer
		if svc.valkey != nil {
			pageCache := cache.NewPageCache(svc.valkey, cache.DefaultPageTTL)
			if n := pageCache.InvalidateAll(ctx); n > 0 {
				slog.Info("page cache cleared", "keys", n)
			}
			contentRenderer = content.NewRenderer(pageCache)
		} else {
			contentRenderer = content.NewRenderer(nil)
		}

		janitor := storage.NewJanitor(svc.results, cfg.Storage.JanitorTTL, cfg.Storage.JanitorInterval)
		janitor.Start(ctx)
		defer janitor.Stop()

		var limiter *middleware.RateLimiter
		if cfg.RateLimit.Limit > 0 {
			limiter = middleware.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
			defer limiter.Stop()
		}

		static, err := fs.Sub(web.StaticFS, "static")
		if err != nil {
			return fmt.Errorf("static assets: %w", err)
		}

		solve := svc.newSolver()
		slog.Info("solver ready", "classifier", solve.ClassifierName(), "result_ttl", svc.resultTTL)

		deps := router.Deps{
			Pages:         handlers.NewPages(renderer, contentRenderer),
			Upload:        handlers.NewUpload(solve, renderer),
			UploadLimiter: limiter,
			Static:        static,
		}
		if svc.local != nil {
			deps.Generated = svc.local.Handler()
		}

		// WriteTimeout must cover a classifier round trip.
		srv := &http.Server{
			Addr:         cfg.Addr(),
			Handler:      router.New(deps),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("server starting", "addr", cfg.Addr())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
		case <-ctx.Done():
			slog.Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		slog.Info("server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
