package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/p-n-ai/pai-pathways/internal/api"
	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
	"github.com/p-n-ai/pai-pathways/internal/platform/cache"
	"github.com/p-n-ai/pai-pathways/internal/platform/config"
	"github.com/p-n-ai/pai-pathways/internal/platform/database"
	"github.com/p-n-ai/pai-pathways/internal/recommend"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "mode", cfg.Mode, "profile_source", cfg.ProfileSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// app is the wired service with the connections it owns.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp loads the catalog, opens the configured backends and builds the
// HTTP handler.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	fail := func(err error) (*app, error) {
		a.Close()
		return nil, err
	}

	mode, err := recommend.ParseMode(cfg.Mode)
	if err != nil {
		return fail(fmt.Errorf("PATHWAYS_RECOMMEND_MODE: %w", err))
	}

	cat, err := catalog.Load(cfg.DataDir)
	if err != nil {
		return fail(err)
	}

	engine, err := recommend.NewEngine(recommend.EngineConfig{
		Catalog: cat,
		Config:  recommend.DefaultConfig().With(recommend.Tunables(cfg.Engine)),
		Logger:  slog.Default(),
	})
	if err != nil {
		return fail(err)
	}

	var checkers []api.Checker
	var profiles learner.Store
	switch cfg.ProfileSource {
	case config.ProfileSourcePostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return fail(err)
		}
		a.closers = append(a.closers, db.Close)
		checkers = append(checkers, db)

		store, err := db.Profiles(ctx)
		if err != nil {
			return fail(err)
		}
		profiles = store
	default:
		profiles = learner.NewMemoryStore(cat.Students...)
	}

	var selections api.Selections
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			return fail(err)
		}
		a.closers = append(a.closers, func() { c.Close() })
		checkers = append(checkers, c)

		store, err := c.Selections()
		if err != nil {
			return fail(err)
		}
		selections = store
	} else {
		slog.Info("cache not configured, session routes disabled")
	}

	srv, err := api.New(api.Options{
		Service:     recommend.NewService(profiles, engine),
		Selections:  selections,
		Checkers:    checkers,
		DefaultMode: mode,
		Logger:      slog.Default(),
	})
	if err != nil {
		return fail(err)
	}
	a.handler = srv.Handler()
	return a, nil
}
