// Package discovery builds the screens' movie lists on top of the batch
// orchestrator: mood prefetching, search hydration and recommendations.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/moodflix/moodflix/internal/batch"
	"github.com/moodflix/moodflix/internal/mood"
	"github.com/moodflix/moodflix/internal/omdb"
)

const (
	// MaxHydrated is the number of search rows upgraded to full records.
	MaxHydrated = 12
	// DefaultRecommendations is the number of "more like this" titles.
	DefaultRecommendations = 6

	placeholderPlot = "Movie details temporarily unavailable. Please try again later."
)

// ErrUnknownMood is returned for a mood the catalog does not know.
var ErrUnknownMood = errors.New("unknown mood")

// TitleSearcher runs a paged title search. *omdb.Client implements it.
type TitleSearcher interface {
	Search(ctx context.Context, query string, page int) (*omdb.SearchResult, error)
}

// BatchResolver resolves many ids. *batch.Orchestrator implements it.
type BatchResolver interface {
	Run(ctx context.Context, job batch.Job) []*omdb.Movie
}

// SearchPage is a hydrated search result.
type SearchPage struct {
	Movies       []*omdb.Movie `json:"movies"`
	TotalResults int           `json:"totalResults"`
}

// Service composes the catalog, the metadata search and the orchestrator.
type Service struct {
	catalog  *mood.Catalog
	search   TitleSearcher
	resolver BatchResolver
	shuffle  mood.ShuffleFunc
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithShuffle replaces the random shuffle used for recommendations.
func WithShuffle(fn mood.ShuffleFunc) Option {
	return func(s *Service) {
		s.shuffle = fn
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log.With("component", "discovery")
		}
	}
}

// New creates a discovery service.
func New(catalog *mood.Catalog, search TitleSearcher, resolver BatchResolver, opts ...Option) *Service {
	s := &Service{
		catalog:  catalog,
		search:   search,
		resolver: resolver,
		shuffle:  rand.Shuffle,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the mood catalog.
func (s *Service) Catalog() *mood.Catalog {
	return s.catalog
}

// Prefetch resolves up to count seed titles for mood. When no seed resolves
// it returns one placeholder per seed so the caller always has something to
// render.
func (s *Service) Prefetch(ctx context.Context, moodName string, count int) ([]*omdb.Movie, error) {
	if !s.catalog.Supported(moodName) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMood, moodName)
	}

	ids := s.catalog.SeedIDs(moodName, count)
	if len(ids) == 0 {
		s.log.Warn("no seed ids for mood", "mood", moodName)
		return []*omdb.Movie{}, nil
	}

	s.log.Info("prefetching mood", "mood", moodName, "count", len(ids))
	movies := s.resolver.Run(ctx, batch.Job{IDs: ids, Delay: -1, Plot: omdb.PlotShort})
	s.log.Info("prefetched mood", "mood", moodName, "fetched", len(movies), "requested", len(ids))

	if len(movies) == 0 {
		s.log.Warn("no movies fetched for mood, using placeholders", "mood", moodName)
		return Placeholders(ids, s.catalog.GenresFor(moodName)), nil
	}
	return movies, nil
}

// Placeholders synthesizes fallback records for ids.
func Placeholders(ids []string, genres []string) []*omdb.Movie {
	genre := strings.Join(genres, ", ")
	movies := make([]*omdb.Movie, 0, len(ids))
	for _, id := range ids {
		movies = append(movies, &omdb.Movie{
			IMDBID:   id,
			Title:    "Movie " + id,
			Year:     "N/A",
			Poster:   "N/A",
			Genre:    genre,
			Plot:     placeholderPlot,
			Type:     "movie",
			Fallback: true,
		})
	}
	return movies
}

// Search runs a title search and upgrades the first MaxHydrated rows to full
// records. Rows that fail to resolve keep their search summary; the search
// order is preserved.
func (s *Service) Search(ctx context.Context, query string, page int) (*SearchPage, error) {
	result, err := s.search.Search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return &SearchPage{Movies: []*omdb.Movie{}, TotalResults: result.TotalResults}, nil
	}

	items := result.Items[:min(MaxHydrated, len(result.Items))]
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.IMDBID)
	}

	resolved := make(map[string]*omdb.Movie, len(ids))
	for _, m := range s.resolver.Run(ctx, batch.Job{IDs: ids, Delay: -1, Plot: omdb.PlotShort}) {
		resolved[m.IMDBID] = m
	}

	movies := make([]*omdb.Movie, 0, len(items))
	for _, it := range items {
		if m, ok := resolved[it.IMDBID]; ok {
			movies = append(movies, m)
			continue
		}
		movies = append(movies, summary(it))
	}

	s.log.Debug("search hydrated", "query", query, "rows", len(items), "resolved", len(resolved))
	return &SearchPage{Movies: movies, TotalResults: result.TotalResults}, nil
}

func summary(it omdb.SearchItem) *omdb.Movie {
	return &omdb.Movie{
		IMDBID: it.IMDBID,
		Title:  it.Title,
		Year:   it.Year,
		Type:   it.Type,
		Poster: it.Poster,
	}
}

// Recommendations resolves up to count random seeds drawn from every genre
// of a comma separated OMDb genre list, excluding excludeID. Genres without
// seeds are skipped; when none has seeds the result is empty.
func (s *Service) Recommendations(ctx context.Context, genre, excludeID string, count int) []*omdb.Movie {
	if count <= 0 {
		count = DefaultRecommendations
	}

	var genres []string
	for _, g := range strings.Split(genre, ",") {
		if g = strings.TrimSpace(g); s.catalog.SeedCount(g) > 0 {
			genres = append(genres, g)
		}
	}
	if len(genres) == 0 {
		s.log.Info("no seeds for genre", "genre", genre)
		return []*omdb.Movie{}
	}

	// One extra per genre leaves room for the excluded id.
	perGenre := (count + len(genres)) / len(genres)
	seeds := s.catalog.RandomSeedsFromGenres(genres, perGenre)

	candidates := seeds[:0]
	for _, id := range seeds {
		if id != excludeID {
			candidates = append(candidates, id)
		}
	}
	s.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if len(candidates) > count {
		candidates = candidates[:count]
	}

	return s.resolver.Run(ctx, batch.Job{IDs: candidates, Delay: -1, Plot: omdb.PlotShort})
}
