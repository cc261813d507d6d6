package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/moodflix/moodflix/internal/discovery"
	"github.com/moodflix/moodflix/internal/mood"
	"github.com/moodflix/moodflix/internal/omdb"
	"github.com/moodflix/moodflix/internal/trailer"
	"github.com/moodflix/moodflix/internal/ttlcache"
)

// MovieLookup fetches a single full record.
type MovieLookup interface {
	LookupByID(ctx context.Context, id string, plot omdb.Plot) (*omdb.Movie, bool, error)
	Configured() bool
}

// TrailerResolver finds a trailer for a title.
type TrailerResolver interface {
	Resolve(ctx context.Context, title, year string) trailer.Result
	Configured() bool
}

// Discovery builds mood, search and recommendation lists.
type Discovery interface {
	Search(ctx context.Context, query string, page int) (*discovery.SearchPage, error)
	Prefetch(ctx context.Context, mood string, count int) ([]*omdb.Movie, error)
	Recommendations(ctx context.Context, genre, excludeID string, count int) []*omdb.Movie
}

// CacheAdmin exposes the operational cache commands.
type CacheAdmin interface {
	ClearCache()
	CacheStats() ttlcache.Stats
	PruneCache() (int, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Movies    MovieLookup
	Trailers  TrailerResolver
	Discovery Discovery
	Moods     *mood.Catalog

	// Optional dependencies
	Caches  map[string]CacheAdmin // keyed by cache name
	Metrics http.Handler          // served on /metrics when set
	Logger  *slog.Logger
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Movies == nil {
		return errors.New("movie lookup is required")
	}
	if d.Trailers == nil {
		return errors.New("trailer resolver is required")
	}
	if d.Discovery == nil {
		return errors.New("discovery service is required")
	}
	if d.Moods == nil {
		return errors.New("mood catalog is required")
	}
	return nil
}
