package v1

import (
	"time"

	"github.com/moodflix/moodflix/internal/mood"
	"github.com/moodflix/moodflix/internal/omdb"
)

// searchResponse is the response for GET /search.
type searchResponse struct {
	Query        string        `json:"query"`
	Page         int           `json:"page"`
	Movies       []*omdb.Movie `json:"movies"`
	TotalResults int           `json:"totalResults"`
}

// trailerResponse mirrors the /api/getTrailer contract: videoId is null
// when no trailer was selected and the match metadata is flattened in.
type trailerResponse struct {
	VideoID      *string `json:"videoId"`
	Title        string  `json:"title,omitempty"`
	ChannelTitle string  `json:"channelTitle,omitempty"`
	PublishedAt  string  `json:"publishedAt,omitempty"`
	Cached       bool    `json:"cached,omitempty"`
	Fallback     bool    `json:"fallback,omitempty"`
	Reason       string  `json:"reason,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// moodInfo describes one mood in GET /moods.
type moodInfo struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type listMoodsResponse struct {
	Moods []moodInfo           `json:"moods"`
	Stats map[string]mood.Stat `json:"stats"`
}

type moodMoviesResponse struct {
	Mood     string        `json:"mood"`
	Genres   []string      `json:"genres"`
	Movies   []*omdb.Movie `json:"movies"`
	Fallback bool          `json:"fallback"`
}

type recommendationsResponse struct {
	Genre  string        `json:"genre"`
	Movies []*omdb.Movie `json:"movies"`
}

// cacheStatsResponse reports every cache by name.
type cacheStatsResponse struct {
	Caches map[string]cacheStats `json:"caches"`
}

type cacheStats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

type pruneResponse struct {
	Removed map[string]int `json:"removed"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	OMDb      bool      `json:"omdbConfigured"`
	YouTube   bool      `json:"youtubeConfigured"`
}
