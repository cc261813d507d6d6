// Package trailer resolves a movie title to its best YouTube trailer. The
// resolver never fails: every problem becomes a fallback Result the UI can
// turn into a manual search link.
package trailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/moodflix/moodflix/internal/metrics"
	"github.com/moodflix/moodflix/internal/ttlcache"
	"github.com/moodflix/moodflix/pkg/youtube"
)

const (
	defaultCacheTTL   = 7 * 24 * time.Hour
	defaultMaxResults = 5

	// CacheName labels the trailer cache in stats and metrics.
	CacheName = "trailer"
)

// Reason explains why a Result carries no video.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonUnconfigured  Reason = "no_api_key"
	ReasonQuotaExceeded Reason = "quota_exceeded"
	ReasonNoResults     Reason = "no_results"
	ReasonTransient     Reason = "transient_error"
	ReasonMissingTitle  Reason = "missing_title"
)

// Result is the outcome of a trailer lookup.
type Result struct {
	VideoID      string `json:"videoId,omitempty"`
	Title        string `json:"title,omitempty"`
	ChannelTitle string `json:"channelTitle,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	Cached       bool   `json:"cached,omitempty"`
	Fallback     bool   `json:"fallback,omitempty"`
	Reason       Reason `json:"reason,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Found reports whether a video was selected.
func (r Result) Found() bool {
	return r.VideoID != ""
}

func fallback(reason Reason, msg string) Result {
	return Result{Fallback: true, Reason: reason, Error: msg}
}

// Searcher finds candidate videos. *youtube.Client implements it.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]youtube.Video, error)
}

// Resolver finds and caches trailers per (title, year).
type Resolver struct {
	searcher   Searcher
	cache      *ttlcache.Cache[Result]
	policy     MatchPolicy
	maxResults int
	log        *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache injects the trailer cache.
func WithCache(cache *ttlcache.Cache[Result]) Option {
	return func(r *Resolver) {
		r.cache = cache
	}
}

// WithMatchPolicy replaces FirstOfficial.
func WithMatchPolicy(p MatchPolicy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithMaxResults sets how many candidates are requested per search.
func WithMaxResults(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxResults = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log.With("component", "trailer")
		}
	}
}

// WithMetrics records upstream outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver creates a resolver. A nil searcher means no API key is
// configured and every uncached lookup falls back immediately.
func NewResolver(searcher Searcher, opts ...Option) *Resolver {
	r := &Resolver{
		searcher:   searcher,
		policy:     FirstOfficial,
		maxResults: defaultMaxResults,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = ttlcache.New[Result](CacheName, defaultCacheTTL)
	}
	return r
}

// Configured reports whether an upstream searcher is available.
func (r *Resolver) Configured() bool {
	return r.searcher != nil
}

// Resolve returns the best trailer for title and year (year may be empty).
func (r *Resolver) Resolve(ctx context.Context, title, year string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("trailer lookup panicked", "title", title, "panic", p)
			res = fallback(ReasonTransient, fmt.Sprint(p))
		}
	}()

	if strings.TrimSpace(title) == "" {
		return fallback(ReasonMissingTitle, "missing required parameter: title")
	}

	key := CacheKey(title, year)
	if cached, ok := r.cache.Get(key); ok {
		r.log.Debug("cache hit", "title", title, "year", year)
		cached.Cached = true
		return cached
	}

	if r.searcher == nil {
		r.log.Info("YouTube API key not configured, using fallback")
		return fallback(ReasonUnconfigured, "")
	}

	query := strings.TrimSpace(fmt.Sprintf("%s official trailer %s", title, year))
	r.log.Debug("searching trailer", "query", query)

	start := time.Now()
	videos, err := r.searcher.Search(ctx, query, r.maxResults)
	switch {
	case errors.Is(err, youtube.ErrQuotaExceeded):
		r.metrics.Upstream(CacheName, "quota_exceeded", time.Since(start))
		r.log.Error("YouTube API quota exceeded or invalid key")
		return fallback(ReasonQuotaExceeded, string(ReasonQuotaExceeded))
	case err != nil:
		r.metrics.Upstream(CacheName, "error", time.Since(start))
		r.log.Error("trailer search failed", "query", query, "error", err)
		return fallback(ReasonTransient, err.Error())
	}
	r.metrics.Upstream(CacheName, "ok", time.Since(start))

	idx := r.policy(videos)
	if idx < 0 || idx >= len(videos) {
		r.log.Info("no trailer found", "query", query)
		res = fallback(ReasonNoResults, "")
		r.cache.Set(key, res)
		return res
	}

	best := videos[idx]
	res = Result{
		VideoID:      best.ID,
		Title:        best.Title,
		ChannelTitle: best.ChannelTitle,
		PublishedAt:  best.PublishedAt,
	}
	r.cache.Set(key, res)
	r.log.Info("resolved trailer", "title", title, "video_id", best.ID, "rank", idx)
	return res
}

// ClearCache drops every cached trailer.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

// CacheStats reports the cached keys.
func (r *Resolver) CacheStats() ttlcache.Stats {
	return r.cache.Stats()
}

// PruneCache removes expired trailers from the cache store.
func (r *Resolver) PruneCache() (int, error) {
	return r.cache.Prune()
}

// CacheKey is the cache key for a title and optional year.
func CacheKey(title, year string) string {
	return title + "|" + year
}
