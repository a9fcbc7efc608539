// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/finboard/internal/account"
	"github.com/starford/finboard/internal/analysis"
	"github.com/starford/finboard/internal/apiclient"
	"github.com/starford/finboard/internal/ecos"
	"github.com/starford/finboard/internal/localstore"
	"github.com/starford/finboard/internal/market"
	"github.com/starford/finboard/internal/mcpserver"
	"github.com/starford/finboard/internal/news"
	"github.com/starford/finboard/internal/sse"
	"github.com/starford/finboard/internal/watcher"
	"github.com/starford/finboard/internal/web"
)

func (a *application) build(w io.Writer) (*Config, *slog.Logger, error) {
	if a.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	cfg := a.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: cfg.Upstream.Timeout}
	}
	return cfg, logger, nil
}

func (a *application) upstream(cfg *Config, logger *slog.Logger) *apiclient.Client {
	return apiclient.New(cfg.Upstream.BaseURL,
		apiclient.WithHTTPClient(a.httpClient),
		apiclient.WithLogger(logger),
	)
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	cfg, logger, err := app.build(os.Stdout)
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("upstream", cfg.Upstream.BaseURL),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("templates_dir", cfg.Templates.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the local cache.
	db, err := localstore.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer db.Close()

	api := app.upstream(cfg, logger)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	ecosSvc := ecos.NewService(api)
	views := web.NewEcosViews(ecosSvc, broker, cfg.Session.MaxViews, cfg.Session.IdleTTL)
	defer views.Close()

	tmpl, err := web.NewTemplates(cfg.Templates.Dir)
	if err != nil {
		return fmt.Errorf("init templates: %w", err)
	}

	pages := web.NewServer(web.Services{
		Market:   market.NewService(api, db),
		Ecos:     ecosSvc,
		News:     news.NewService(api),
		Analysis: analysis.NewService(api, db),
		Account:  account.NewService(api),
		Cache:    db,
	}, tmpl, broker, views,
		web.WithLoginURL(cfg.Upstream.LoginTarget()),
		web.WithLogger(logger),
	)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", pages.Router())

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload templates edited on disk and tell open pages to refresh.
	if cfg.Templates.Watch {
		g.Go(func() error {
			err := watcher.Watch(gCtx, cfg.Templates.Dir, watcher.DefaultDebounce, logger, func(paths []string) {
				if err := tmpl.Reload(); err != nil {
					logger.Warn("template reload failed", slog.String("error", err.Error()))
					return
				}
				logger.Info("templates reloaded", slog.Int("changed", len(paths)))
				broker.PublishReload()
			})
			if err != nil {
				logger.Warn("template watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Event streams only end when the broker closes.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they
// never mix with the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	cfg, logger, err := app.build(os.Stderr)
	if err != nil {
		return err
	}

	db, err := localstore.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer db.Close()

	api := app.upstream(cfg, logger)
	srv := mcpserver.New(market.NewService(api, db), ecos.NewService(api), news.NewService(api))

	logger.Info("MCP server starting", slog.String("upstream", cfg.Upstream.BaseURL))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
