package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"certview/config"
	"certview/internal/backend"
	"certview/internal/handlers"
	"certview/internal/logger"
	"certview/internal/metrics"
	"certview/internal/version"
	"certview/internal/view"
	"certview/middleware"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput, FilePath: cfg.LogFilePath})
	log := logger.Get()
	log.Info().
		Str("version", version.Version).
		Str("env", string(cfg.Env)).
		Str("log_level", cfg.LogLevel).
		Msg("certview starting")

	client, err := backend.NewClientFromConfig(cfg.Backend)
	if err != nil {
		return fmt.Errorf("initialize backend client: %w", err)
	}
	defer client.Shutdown()
	if cfg.Backend.Addr == "" {
		log.Warn().Msg("No backend address configured; the console will show an empty table")
	} else {
		log.Info().
			Str("backend_addr", cfg.Backend.Addr).
			Str("revoke_url", client.RevokeURL()).
			Msg("Backend client initialized")
	}

	console := handlers.NewConsole(client, view.WithLoadTimeout(loadTimeout(cfg.Backend)))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	health := backend.NewHealth(client, cfg.StatusCacheTTL)
	registry.MustRegister(metrics.NewViewCollector(console.Fetcher, health))

	webFS, err := fs.Sub(embeddedWeb, "web")
	if err != nil {
		return fmt.Errorf("open embedded web filesystem: %w", err)
	}
	router, err := buildRouter(cfg, console, health, registry, webFS)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	console.Controller.Start(ctx)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		console.Fetcher.Wait()
		return err
	})
	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func buildRouter(cfg config.Config, console *handlers.Console, health *backend.Health, registry *prometheus.Registry, webFS fs.FS) (http.Handler, error) {
	templates, err := handlers.ParseTemplates(webFS)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	assetsFS, err := fs.Sub(webFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("open embedded assets: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders(console.RevokeURL))
	r.Use(middleware.CSRFProtection)
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))
	r.Get("/api/health", handlers.HealthCheck)
	r.Get("/api/ready", handlers.ReadinessCheck(console))
	r.Get("/api/status", handlers.StatusHandler(health))
	r.Get("/api/version", handlers.VersionInfo)
	r.Get("/api/config", handlers.GetConfig(cfg, console.RevokeURL))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	handlers.RegisterCertRoutes(r, console)
	handlers.RegisterUIRoutes(r, console, templates, middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	return r, nil
}

// loadTimeout bounds one background load: every attempt the retrying client
// may make, plus its backoff.
func loadTimeout(cfg config.BackendConfig) time.Duration {
	return cfg.Timeout*time.Duration(cfg.RetryMax+1) + 5*time.Second
}
