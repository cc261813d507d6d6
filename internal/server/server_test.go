package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodflix/moodflix/internal/config"
	"github.com/moodflix/moodflix/internal/omdb"
	"github.com/moodflix/moodflix/internal/trailer"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const matrixJSON = `{"Title":"The Matrix","Year":"1999","Genre":"Action, Sci-Fi","imdbID":"tt0133093","Type":"movie","Response":"True"}`

func fakeOMDb(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("i") == "tt0133093" {
			_, _ = w.Write([]byte(matrixJSON))
			return
		}
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig(t *testing.T, omdbURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OMDb.APIKey = "test-key"
	cfg.OMDb.BaseURL = omdbURL
	cfg.YouTube.APIKey = ""
	cfg.Batch.Delay.Duration = time.Millisecond
	return cfg
}

func TestNew_Backends(t *testing.T) {
	upstream, _ := fakeOMDb(t)

	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"memory", func(*config.Config) {}},
		{"lru", func(c *config.Config) { c.Cache.Backend = config.BackendLRU; c.Cache.MaxEntries = 10 }},
		{"sqlite", func(c *config.Config) {
			c.Cache.Backend = config.BackendSQLite
			c.Cache.Path = filepath.Join(t.TempDir(), "nested", "cache.db")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, upstream.URL)
			tt.mutate(cfg)

			app, err := New(cfg, testLogger())
			require.NoError(t, err)
			t.Cleanup(app.Close)

			ctx := context.Background()
			m, found, err := app.Movies.LookupByID(ctx, "tt0133093", omdb.PlotShort)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "The Matrix", m.Title)

			stats := app.Movies.CacheStats()
			assert.Equal(t, []string{"tt0133093_short"}, stats.Keys)

			assert.False(t, app.Trailers.Configured())
			res := app.Trailers.Resolve(ctx, "The Matrix", "1999")
			assert.Equal(t, trailer.ReasonUnconfigured, res.Reason)
		})
	}
}

func TestNew_InvalidLRUSize(t *testing.T) {
	cfg := testConfig(t, "http://localhost")
	cfg.Cache.Backend = config.BackendLRU
	cfg.Cache.MaxEntries = 0

	_, err := New(cfg, testLogger())
	require.Error(t, err)
}

func TestNew_SQLiteCacheSurvivesRestart(t *testing.T) {
	upstream, calls := fakeOMDb(t)
	cfg := testConfig(t, upstream.URL)
	cfg.Cache.Backend = config.BackendSQLite
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")

	app, err := New(cfg, testLogger())
	require.NoError(t, err)
	_, _, err = app.Movies.LookupByID(context.Background(), "tt0133093", omdb.PlotShort)
	require.NoError(t, err)
	app.Close()

	app, err = New(cfg, testLogger())
	require.NoError(t, err)
	defer app.Close()

	m, found, err := app.Movies.LookupByID(context.Background(), "tt0133093", omdb.PlotShort)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, int32(1), calls.Load(), "second process reads the persisted entry")
}

func TestRunner_ServeAndShutdown(t *testing.T) {
	upstream, _ := fakeOMDb(t)
	app, err := New(testConfig(t, upstream.URL), testLogger())
	require.NoError(t, err)
	defer app.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(app, Config{PruneInterval: 10 * time.Millisecond}, testLogger())

	done := make(chan error, 1)
	go func() { done <- runner.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()

	resp, err := http.Get(base + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(base + "/api/v1/movies/tt0133093")
	require.NoError(t, err)
	var m omdb.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	_ = resp.Body.Close()
	assert.Equal(t, "The Matrix", m.Title)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), "moodflix_upstream_requests_total")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_PruneOnce(t *testing.T) {
	upstream, _ := fakeOMDb(t)
	cfg := testConfig(t, upstream.URL)
	cfg.OMDb.CacheTTL.Duration = time.Nanosecond

	app, err := New(cfg, testLogger())
	require.NoError(t, err)
	defer app.Close()

	_, _, err = app.Movies.LookupByID(context.Background(), "tt0133093", omdb.PlotShort)
	require.NoError(t, err)
	require.Equal(t, 1, app.Movies.CacheStats().Size)

	time.Sleep(time.Millisecond)
	NewRunner(app, Config{}, testLogger()).PruneOnce()
	assert.Zero(t, app.Movies.CacheStats().Size)
}
