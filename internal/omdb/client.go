package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/moodflix/moodflix/internal/metrics"
	"github.com/moodflix/moodflix/internal/ttlcache"
)

const (
	defaultBaseURL  = "https://www.omdbapi.com/"
	defaultCacheTTL = 5 * time.Minute
	defaultTimeout  = 10 * time.Second

	// CacheName labels the lookup cache in stats and metrics.
	CacheName = "omdb"
)

// Client is an OMDb API client. ID lookups are cached per (id, plot) and
// concurrent lookups of the same key share one upstream request.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *ttlcache.Cache[*Movie]
	inflight   singleflight.Group
	log        *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache injects the lookup cache. The composition root owns its lifecycle.
func WithCache(cache *ttlcache.Cache[*Movie]) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log.With("component", "omdb")
		}
	}
}

// WithMetrics records upstream request outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new OMDb client. Without WithCache it gets a private
// in-memory cache with a five minute TTL.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = ttlcache.New[*Movie](CacheName, defaultCacheTTL)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search returns one page of movies matching query. A blank query or a
// missing API key yields an empty result without a network call, as does an
// upstream "no results" answer. Transport failures are returned as errors.
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return emptySearch(), nil
	}
	if !c.Configured() {
		c.log.Error("OMDb API key is not configured")
		return emptySearch(), nil
	}
	if page == 0 {
		page = 1
	}

	params := url.Values{}
	params.Set("s", query)
	params.Set("type", "movie")
	params.Set("page", strconv.Itoa(page))

	var resp searchResponse
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil, err
	}

	if resp.Response == "False" {
		c.log.Warn("search returned no results", "query", query, "page", page, "reason", resp.Error)
		return emptySearch(), nil
	}
	if resp.Response != "True" {
		return nil, &TransportError{Op: "search", Err: fmt.Errorf("%w: Response=%q", ErrMalformedResponse, resp.Response)}
	}

	total := 0
	if resp.TotalResults != "" {
		n, err := strconv.Atoi(resp.TotalResults)
		if err != nil {
			return nil, &TransportError{Op: "search", Err: fmt.Errorf("%w: totalResults=%q", ErrMalformedResponse, resp.TotalResults)}
		}
		total = n
	}

	items := resp.Search
	if items == nil {
		items = []SearchItem{}
	}
	return &SearchResult{Items: items, TotalResults: total}, nil
}

// LookupByID fetches the full record for an IMDb id. found is false when the
// upstream reports no match, the id is empty or no API key is configured;
// absences are never cached. err is non-nil only for transport failures.
func (c *Client) LookupByID(ctx context.Context, id string, plot Plot) (movie *Movie, found bool, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		c.log.Warn("lookup called without id")
		return nil, false, nil
	}
	if !c.Configured() {
		c.log.Error("OMDb API key is not configured")
		return nil, false, nil
	}
	if plot == "" {
		plot = PlotShort
	}

	key := cacheKey(id, plot)
	if m, ok := c.cache.Get(key); ok {
		c.log.Debug("cache hit", "id", id, "plot", plot)
		return m, true, nil
	}

	// The shared fetch outlives any single caller; it stays bounded by the
	// HTTP client timeout. Each caller stops waiting when its own ctx ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (any, error) {
		return c.fetchByID(fetchCtx, id, plot)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, false, &TransportError{Op: "lookup", Err: ctx.Err()}
	}
	if res.Err != nil {
		return nil, false, res.Err
	}
	if res.Shared {
		c.log.Debug("joined in-flight lookup", "id", id, "plot", plot)
	}

	m, _ := res.Val.(*Movie)
	if m == nil {
		return nil, false, nil
	}
	return m, true, nil
}

func (c *Client) fetchByID(ctx context.Context, id string, plot Plot) (*Movie, error) {
	params := url.Values{}
	params.Set("i", id)
	params.Set("plot", string(plot))

	m, err := c.lookup(ctx, "lookup", params)
	if err != nil {
		return nil, err
	}
	if m == nil {
		c.log.Warn("lookup found no match", "id", id)
		return nil, nil
	}

	c.cache.Set(cacheKey(id, plot), m)
	return m, nil
}

// LookupByTitle fetches the record whose title matches exactly, optionally
// narrowed by year. Results are not cached.
func (c *Client) LookupByTitle(ctx context.Context, title, year string) (*Movie, bool, error) {
	if strings.TrimSpace(title) == "" {
		c.log.Warn("lookup by title called without title")
		return nil, false, nil
	}
	if !c.Configured() {
		c.log.Error("OMDb API key is not configured")
		return nil, false, nil
	}

	params := url.Values{}
	params.Set("t", title)
	if year != "" {
		params.Set("y", year)
	}

	m, err := c.lookup(ctx, "lookup by title", params)
	if err != nil {
		return nil, false, err
	}
	if m == nil {
		c.log.Warn("lookup by title found no match", "title", title, "year", year)
		return nil, false, nil
	}
	return m, true, nil
}

// ClearCache drops every cached lookup.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// CacheStats reports the cached keys.
func (c *Client) CacheStats() ttlcache.Stats {
	return c.cache.Stats()
}

// PruneCache removes expired lookups from the cache store.
func (c *Client) PruneCache() (int, error) {
	return c.cache.Prune()
}

// lookup runs a single-record query. A nil movie with nil error means the
// upstream reported no match.
func (c *Client) lookup(ctx context.Context, op string, params url.Values) (*Movie, error) {
	var resp movieResponse
	if err := c.get(ctx, op, params, &resp); err != nil {
		return nil, err
	}

	switch resp.Response {
	case "False":
		return nil, nil
	case "True":
	default:
		return nil, &TransportError{Op: op, Err: fmt.Errorf("%w: Response=%q", ErrMalformedResponse, resp.Response)}
	}
	if resp.IMDBID == "" {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("%w: missing imdbID", ErrMalformedResponse)}
	}

	m := resp.Movie
	m.Fallback = false
	return &m, nil
}

func (c *Client) get(ctx context.Context, op string, params url.Values, out any) error {
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Upstream(CacheName, "error", time.Since(start))
		c.log.Error("request failed", "op", op, "error", err)
		return &TransportError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.metrics.Upstream(CacheName, "error", time.Since(start))
		c.log.Error("unexpected status", "op", op, "status", resp.StatusCode)
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("OMDb API error: %s", resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.Upstream(CacheName, "error", time.Since(start))
		return &TransportError{Op: op, Err: fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)}
	}

	c.metrics.Upstream(CacheName, "ok", time.Since(start))
	return nil
}

func cacheKey(id string, plot Plot) string {
	return id + "_" + string(plot)
}
