// Package omdb provides a caching client for the OMDb movie metadata API.
package omdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Plot selects the plot length returned by ID lookups.
type Plot string

const (
	PlotShort Plot = "short"
	PlotFull  Plot = "full"
)

// ParsePlot validates a plot variant. Empty means short.
func ParsePlot(s string) (Plot, error) {
	switch Plot(strings.ToLower(strings.TrimSpace(s))) {
	case "", PlotShort:
		return PlotShort, nil
	case PlotFull:
		return PlotFull, nil
	default:
		return "", fmt.Errorf("invalid plot %q: must be short or full", s)
	}
}

// Rating is one entry of the OMDb Ratings list.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Movie is a full OMDb record, as returned by an ID or title lookup.
type Movie struct {
	IMDBID     string   `json:"imdbID"`
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated,omitempty"`
	Released   string   `json:"Released,omitempty"`
	Runtime    string   `json:"Runtime,omitempty"`
	Genre      string   `json:"Genre,omitempty"`
	Director   string   `json:"Director,omitempty"`
	Writer     string   `json:"Writer,omitempty"`
	Actors     string   `json:"Actors,omitempty"`
	Plot       string   `json:"Plot,omitempty"`
	Language   string   `json:"Language,omitempty"`
	Country    string   `json:"Country,omitempty"`
	Awards     string   `json:"Awards,omitempty"`
	Poster     string   `json:"Poster,omitempty"`
	Ratings    []Rating `json:"Ratings,omitempty"`
	Metascore  string   `json:"Metascore,omitempty"`
	IMDBRating string   `json:"imdbRating,omitempty"`
	IMDBVotes  string   `json:"imdbVotes,omitempty"`
	Type       string   `json:"Type,omitempty"`
	BoxOffice  string   `json:"BoxOffice,omitempty"`

	// Fallback marks a placeholder synthesized when the upstream could not
	// resolve the id. Never set on records decoded from OMDb.
	Fallback bool `json:"fallback,omitempty"`
}

// Genres splits the comma separated Genre field.
func (m *Movie) Genres() []string {
	if m.Genre == "" || m.Genre == "N/A" {
		return nil
	}
	parts := strings.Split(m.Genre, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// RuntimeMinutes parses Runtime ("136 min"). Returns 0 when unknown.
func (m *Movie) RuntimeMinutes() int {
	fields := strings.Fields(m.Runtime)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}

// HasPoster reports whether Poster holds a usable URL.
func (m *Movie) HasPoster() bool {
	return m.Poster != "" && m.Poster != "N/A"
}

// SearchItem is a summary row from a title search.
type SearchItem struct {
	IMDBID string `json:"imdbID"`
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// SearchResult is one page of title search results.
type SearchResult struct {
	Items        []SearchItem `json:"items"`
	TotalResults int          `json:"totalResults"`
}

func emptySearch() *SearchResult {
	return &SearchResult{Items: []SearchItem{}}
}

// Wire envelopes. OMDb reports failures in-band with Response "False".

type movieResponse struct {
	Movie
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type searchResponse struct {
	Search       []SearchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
}
