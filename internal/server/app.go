// Package server wires the caches, upstream clients and API into a runnable
// process.
package server

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "modernc.org/sqlite"

	v1 "github.com/moodflix/moodflix/internal/api/v1"
	"github.com/moodflix/moodflix/internal/batch"
	"github.com/moodflix/moodflix/internal/config"
	"github.com/moodflix/moodflix/internal/discovery"
	"github.com/moodflix/moodflix/internal/metrics"
	"github.com/moodflix/moodflix/internal/migrations"
	"github.com/moodflix/moodflix/internal/mood"
	"github.com/moodflix/moodflix/internal/omdb"
	"github.com/moodflix/moodflix/internal/trailer"
	"github.com/moodflix/moodflix/internal/ttlcache"
	"github.com/moodflix/moodflix/pkg/youtube"
)

// App holds every long-lived component. The two caches are created once
// here and shared by all requests for the lifetime of the process.
type App struct {
	Movies    *omdb.Client
	Trailers  *trailer.Resolver
	Batch     *batch.Orchestrator
	Catalog   *mood.Catalog
	Discovery *discovery.Service
	API       *v1.Server
	Metrics   *metrics.Metrics

	registry *prometheus.Registry
	db       *sql.DB
	logger   *slog.Logger
}

// New builds the application from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	app := &App{
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}
	app.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics = metrics.New(app.registry)

	if cfg.Cache.Backend == config.BackendSQLite {
		db, err := openCacheDB(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		app.db = db
	}

	movieCache, err := newCache[*omdb.Movie](app, cfg, omdb.CacheName, cfg.OMDb.CacheTTL.Duration)
	if err != nil {
		app.Close()
		return nil, err
	}
	trailerCache, err := newCache[trailer.Result](app, cfg, trailer.CacheName, cfg.YouTube.CacheTTL.Duration)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Movies = omdb.NewClient(cfg.OMDb.APIKey,
		omdb.WithBaseURL(cfg.OMDb.BaseURL),
		omdb.WithHTTPClient(&http.Client{Timeout: cfg.OMDb.Timeout.Duration}),
		omdb.WithCache(movieCache),
		omdb.WithLogger(logger),
		omdb.WithMetrics(app.Metrics),
	)

	// A nil Searcher marks the resolver unconfigured. Assigning a nil
	// *youtube.Client would produce a non-nil interface.
	var searcher trailer.Searcher
	if cfg.YouTube.APIKey != "" {
		searcher = youtube.New(cfg.YouTube.APIKey,
			youtube.WithBaseURL(cfg.YouTube.BaseURL),
			youtube.WithHTTPClient(&http.Client{Timeout: cfg.YouTube.Timeout.Duration}),
			youtube.WithLogger(logger),
		)
	}
	app.Trailers = trailer.NewResolver(searcher,
		trailer.WithCache(trailerCache),
		trailer.WithMaxResults(cfg.YouTube.MaxResults),
		trailer.WithLogger(logger),
		trailer.WithMetrics(app.Metrics),
	)

	app.Batch = batch.New(app.Movies,
		batch.WithSize(cfg.Batch.Size),
		batch.WithDelay(cfg.Batch.Delay.Duration),
		batch.WithLogger(logger),
		batch.WithMetrics(app.Metrics),
	)

	app.Catalog, err = mood.New()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load mood catalog: %w", err)
	}
	app.Discovery = discovery.New(app.Catalog, app.Movies, app.Batch, discovery.WithLogger(logger))

	app.API, err = v1.New(v1.ServerDeps{
		Movies:    app.Movies,
		Trailers:  app.Trailers,
		Discovery: app.Discovery,
		Moods:     app.Catalog,
		Caches:    app.Caches(),
		Metrics:   promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}),
		Logger:    logger,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	if !app.Movies.Configured() {
		logger.Warn("OMDb API key is not configured, lookups will return no results")
	}
	if !app.Trailers.Configured() {
		logger.Info("YouTube API key is not configured, trailers fall back to search links")
	}

	return app, nil
}

// Caches returns the operational view of both caches keyed by name.
func (a *App) Caches() map[string]v1.CacheAdmin {
	return map[string]v1.CacheAdmin{
		omdb.CacheName:    a.Movies,
		trailer.CacheName: a.Trailers,
	}
}

// Close releases the cache database, if any.
func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func openCacheDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// modernc sqlite serialises writers; a single connection avoids
	// SQLITE_BUSY under concurrent batch writes.
	db.SetMaxOpenConns(1)
	if err := migrations.Apply(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return db, nil
}

func newCache[V any](app *App, cfg *config.Config, name string, ttl time.Duration) (*ttlcache.Cache[V], error) {
	opts := []ttlcache.Option[V]{
		ttlcache.WithLogger[V](app.logger),
		ttlcache.WithMetrics[V](app.Metrics),
	}

	switch cfg.Cache.Backend {
	case config.BackendLRU:
		store, err := ttlcache.NewLRUStore[V](cfg.Cache.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("%s cache: %w", name, err)
		}
		opts = append(opts, ttlcache.WithStore[V](store))
	case config.BackendSQLite:
		opts = append(opts, ttlcache.WithStore[V](ttlcache.NewSQLiteStore[V](app.db, name)))
	}

	return ttlcache.New[V](name, ttl, opts...), nil
}
