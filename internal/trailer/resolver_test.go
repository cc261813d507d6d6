package trailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodflix/moodflix/internal/ttlcache"
	"github.com/moodflix/moodflix/pkg/youtube"
)

// fakeSearcher returns canned candidates and counts calls.
type fakeSearcher struct {
	calls     atomic.Int32
	lastQuery string
	lastMax   int
	videos    []youtube.Video
	err       error
	panicMsg  string
}

func (f *fakeSearcher) Search(_ context.Context, query string, maxResults int) ([]youtube.Video, error) {
	f.calls.Add(1)
	f.lastQuery = query
	f.lastMax = maxResults
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.videos, f.err
}

func fiveCandidates() []youtube.Video {
	return []youtube.Video{
		{ID: "v0", Title: "Inception explained", ChannelTitle: "Film Theory", PublishedAt: "2019-01-01T00:00:00Z"},
		{ID: "v1", Title: "Inception trailer reaction", ChannelTitle: "Reacts", PublishedAt: "2018-01-01T00:00:00Z"},
		{ID: "v2", Title: "Inception - Official Trailer", ChannelTitle: "Uploader", PublishedAt: "2010-05-11T00:00:00Z"},
		{ID: "v3", Title: "Inception Official Trailer 2", ChannelTitle: "Warner Bros. Official", PublishedAt: "2010-06-01T00:00:00Z"},
		{ID: "v4", Title: "Inception", ChannelTitle: "Movieclips", PublishedAt: "2011-01-01T00:00:00Z"},
	}
}

func TestResolver_SelectsFirstQualifyingCandidate(t *testing.T) {
	searcher := &fakeSearcher{videos: fiveCandidates()}
	r := NewResolver(searcher)

	res := r.Resolve(context.Background(), "Inception", "2010")

	assert.Equal(t, "Inception official trailer 2010", searcher.lastQuery)
	assert.Equal(t, 5, searcher.lastMax)
	assert.Equal(t, "v2", res.VideoID, "candidate 2 is the first official trailer")
	assert.Equal(t, "Inception - Official Trailer", res.Title)
	assert.Equal(t, "Uploader", res.ChannelTitle)
	assert.Equal(t, "2010-05-11T00:00:00Z", res.PublishedAt)
	assert.True(t, res.Found())
	assert.False(t, res.Fallback)
	assert.False(t, res.Cached)
}

func TestResolver_CachesHitsPerTitleAndYear(t *testing.T) {
	searcher := &fakeSearcher{videos: fiveCandidates()}
	r := NewResolver(searcher)
	ctx := context.Background()

	first := r.Resolve(ctx, "Inception", "2010")
	second := r.Resolve(ctx, "Inception", "2010")

	assert.Equal(t, int32(1), searcher.calls.Load())
	assert.Equal(t, first.VideoID, second.VideoID)
	assert.True(t, second.Cached)

	// No year is a different key and trims the query.
	_ = r.Resolve(ctx, "Inception", "")
	assert.Equal(t, "Inception official trailer", searcher.lastQuery)
	assert.Equal(t, int32(2), searcher.calls.Load())
	assert.Equal(t, []string{"Inception|", "Inception|2010"}, r.CacheStats().Keys)
}

func TestResolver_CacheExpiresAfterSevenDays(t *testing.T) {
	searcher := &fakeSearcher{videos: fiveCandidates()}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := ttlcache.New[Result](CacheName, 7*24*time.Hour, ttlcache.WithClock[Result](func() time.Time { return now }))
	r := NewResolver(searcher, WithCache(cache))
	ctx := context.Background()

	_ = r.Resolve(ctx, "Inception", "2010")

	now = now.Add(6 * 24 * time.Hour)
	res := r.Resolve(ctx, "Inception", "2010")
	assert.True(t, res.Cached, "a six day old entry outlives the five minute metadata TTL")
	assert.Equal(t, int32(1), searcher.calls.Load())

	now = now.Add(24 * time.Hour)
	res = r.Resolve(ctx, "Inception", "2010")
	assert.False(t, res.Cached)
	assert.Equal(t, int32(2), searcher.calls.Load())
}

func TestResolver_Unconfigured(t *testing.T) {
	r := NewResolver(nil)

	res := r.Resolve(context.Background(), "Inception", "2010")
	assert.False(t, res.Found())
	assert.True(t, res.Fallback)
	assert.Equal(t, ReasonUnconfigured, res.Reason)
	assert.False(t, r.Configured())
	assert.Equal(t, 0, r.CacheStats().Size, "unconfigured fallback is not cached")
}

func TestResolver_QuotaExceeded(t *testing.T) {
	searcher := &fakeSearcher{err: youtube.ErrQuotaExceeded}
	r := NewResolver(searcher)

	res := r.Resolve(context.Background(), "Inception", "2010")
	assert.False(t, res.Found())
	assert.True(t, res.Fallback)
	assert.Equal(t, ReasonQuotaExceeded, res.Reason)
	assert.Equal(t, "quota_exceeded", res.Error)

	// Quota answers are not cached: the next call retries.
	_ = r.Resolve(context.Background(), "Inception", "2010")
	assert.Equal(t, int32(2), searcher.calls.Load())
}

func TestResolver_TransientError(t *testing.T) {
	searcher := &fakeSearcher{err: &youtube.StatusError{StatusCode: 500, Status: "500 Internal Server Error"}}
	r := NewResolver(searcher)

	res := r.Resolve(context.Background(), "Inception", "2010")
	assert.True(t, res.Fallback)
	assert.Equal(t, ReasonTransient, res.Reason)
	assert.Contains(t, res.Error, "500")
	assert.Equal(t, 0, r.CacheStats().Size)
}

func TestResolver_ZeroResultsAreCached(t *testing.T) {
	searcher := &fakeSearcher{videos: []youtube.Video{}}
	r := NewResolver(searcher)
	ctx := context.Background()

	res := r.Resolve(ctx, "Obscure Film", "2031")
	assert.True(t, res.Fallback)
	assert.Equal(t, ReasonNoResults, res.Reason)
	assert.False(t, res.Found())

	res = r.Resolve(ctx, "Obscure Film", "2031")
	assert.True(t, res.Cached)
	assert.Equal(t, ReasonNoResults, res.Reason)
	assert.Equal(t, int32(1), searcher.calls.Load(), "second call within TTL makes no upstream request")
}

func TestResolver_MissingTitle(t *testing.T) {
	searcher := &fakeSearcher{videos: fiveCandidates()}
	r := NewResolver(searcher)

	res := r.Resolve(context.Background(), "  ", "2010")
	assert.True(t, res.Fallback)
	assert.Equal(t, ReasonMissingTitle, res.Reason)
	assert.Equal(t, int32(0), searcher.calls.Load())
}

func TestResolver_RecoversFromPanic(t *testing.T) {
	searcher := &fakeSearcher{panicMsg: "boom"}
	r := NewResolver(searcher)

	var res Result
	require.NotPanics(t, func() {
		res = r.Resolve(context.Background(), "Inception", "2010")
	})
	assert.True(t, res.Fallback)
	assert.Equal(t, ReasonTransient, res.Reason)
	assert.Equal(t, "boom", res.Error)
}

func TestResolver_CustomPolicy(t *testing.T) {
	searcher := &fakeSearcher{videos: fiveCandidates()}
	last := func(c []youtube.Video) int { return len(c) - 1 }
	r := NewResolver(searcher, WithMatchPolicy(last), WithMaxResults(10))

	res := r.Resolve(context.Background(), "Inception", "2010")
	assert.Equal(t, "v4", res.VideoID)
	assert.Equal(t, 10, searcher.lastMax)
}

func TestResolver_ClearCache(t *testing.T) {
	searcher := &fakeSearcher{videos: fiveCandidates()}
	r := NewResolver(searcher)
	ctx := context.Background()

	_ = r.Resolve(ctx, "Inception", "2010")
	r.ClearCache()
	_ = r.Resolve(ctx, "Inception", "2010")
	assert.Equal(t, int32(2), searcher.calls.Load())
}

func TestResolver_WithYouTubeClient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("q") == "Quota official trailer" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{
			map[string]any{
				"id":      map[string]string{"videoId": "YoGHN8zd5kk"},
				"snippet": map[string]string{"title": "Inception Official Trailer", "channelTitle": "Warner Bros.", "publishedAt": "2010-05-11T00:00:00Z"},
			},
		}})
	}))
	defer server.Close()

	r := NewResolver(youtube.New("yt-key", youtube.WithBaseURL(server.URL)))
	ctx := context.Background()

	res := r.Resolve(ctx, "Inception", "2010")
	assert.Equal(t, "YoGHN8zd5kk", res.VideoID)

	res = r.Resolve(ctx, "Quota", "")
	assert.Equal(t, ReasonQuotaExceeded, res.Reason)
	assert.Equal(t, int32(2), calls.Load())
}
