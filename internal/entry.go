// Package internal provides the application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/itembox/internal/api"
	"github.com/starford/itembox/internal/itemservice"
	"github.com/starford/itembox/internal/journal"
	"github.com/starford/itembox/internal/sse"
	"github.com/starford/itembox/internal/storage"
	"github.com/starford/itembox/internal/watch"
)

// App is a wired item service plus the resources it holds open.
type App struct {
	Config  *Config
	Service *itemservice.Service
	Logger  *slog.Logger

	journal *journal.DB
}

// Open wires storage, journal and service from the given options. The caller
// must Close the returned App.
//
// The storage root is not created here; with storage.create set, the first
// Add creates it. A journal that cannot be opened is logged and skipped
// unless WithJournalRequired is given.
func Open(opts ...Option) (*App, error) {
	app := &application{logOutput: os.Stderr}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("storage_root", cfg.Storage.Root),
		slog.Bool("journal_enabled", cfg.Journal.Enabled),
		slog.String("journal_path", cfg.Journal.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	var fsOpts []storage.FSOption
	if cfg.Storage.Create {
		fsOpts = append(fsOpts, storage.WithCreateRoot())
	}
	store, err := storage.NewFS(cfg.Storage.Root, fsOpts...)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &App{Config: cfg, Logger: logger}

	var rec journal.Recorder
	if cfg.Journal.Enabled && app.journal != journalOff {
		db, err := journal.Open(cfg.Journal.Path)
		switch {
		case err == nil:
			a.journal = db
			rec = db
		case app.journal == journalRequired:
			return nil, fmt.Errorf("init journal: %w", err)
		default:
			logger.Warn("journal unavailable, operations will not be recorded",
				slog.String("path", cfg.Journal.Path),
				slog.String("error", err.Error()))
		}
	}

	a.Service = itemservice.NewService(store, rec, logger)
	return a, nil
}

// Close releases the journal, if one was opened.
func (a *App) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}

// Run starts the HTTP API, the storage root watcher and the SSE broker, and
// blocks until ctx is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	a, err := Open(opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config
	logger := a.Logger

	// The watcher needs the directory to exist before it can attach.
	if cfg.Storage.Create {
		if err := storage.EnsureRoot(a.Service.Root()); err != nil {
			return err
		}
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(a.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := os.Stat(a.Service.Root()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"storage unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := watch.Watch(gCtx, a.Service.Root(), logger, broker.PublishItemEvent); err != nil {
			logger.Warn("watcher unavailable", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		// Streams must end before Shutdown, or it waits out its timeout.
		logger.Info("Closing event streams", slog.Int("clients", broker.ClientCount()))
		broker.Publish(sse.Event{Type: sse.TypeServerShutdown, Data: map[string]string{}})
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher stops alongside the
// HTTP server after a signal.
var errShutdown = errors.New("shutdown requested")
