package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config for the HTTP runner.
type Config struct {
	Addr            string
	PruneInterval   time.Duration // zero disables background pruning
	ShutdownTimeout time.Duration
}

// Runner serves the API and runs background jobs until its context ends.
type Runner struct {
	app    *App
	config Config
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(app *App, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Runner{
		app:    app,
		config: cfg,
		logger: logger,
	}
}

// Run listens on the configured address. It blocks until ctx is canceled
// or a component fails, then shuts the HTTP server down gracefully.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return r.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r.app.API.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if r.config.PruneInterval > 0 {
		g.Go(func() error {
			r.prune(ctx)
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// prune drops expired entries from every cache on a fixed interval.
func (r *Runner) prune(ctx context.Context) {
	ticker := time.NewTicker(r.config.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.PruneOnce()
		}
	}
}

// PruneOnce prunes every cache and logs the outcome.
func (r *Runner) PruneOnce() {
	for name, c := range r.app.Caches() {
		n, err := c.PruneCache()
		if err != nil {
			r.logger.Error("cache prune failed", "cache", name, "error", err)
			continue
		}
		if n > 0 {
			r.logger.Info("cache pruned", "cache", name, "removed", n)
		}
	}
}
