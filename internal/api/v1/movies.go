package v1

import (
	"net/http"
	"strings"

	"github.com/moodflix/moodflix/internal/discovery"
	"github.com/moodflix/moodflix/internal/omdb"
)

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	page := max(queryInt(r, "page", 1), 1)

	result, err := s.deps.Discovery.Search(r.Context(), query, page)
	if err != nil {
		s.log.Error("search failed", "query", query, "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:        query,
		Page:         page,
		Movies:       result.Movies,
		TotalResults: result.TotalResults,
	})
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	plot, err := omdb.ParsePlot(r.URL.Query().Get("plot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PLOT", err.Error())
		return
	}

	movie, found, err := s.deps.Movies.LookupByID(r.Context(), id, plot)
	if err != nil {
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "movie not found")
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	genre := strings.TrimSpace(r.URL.Query().Get("genre"))
	if genre == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMETER", "missing required parameter: genre")
		return
	}
	exclude := r.URL.Query().Get("exclude")
	count := queryInt(r, "count", discovery.DefaultRecommendations)

	movies := s.deps.Discovery.Recommendations(r.Context(), genre, exclude, count)
	writeJSON(w, http.StatusOK, recommendationsResponse{Genre: genre, Movies: movies})
}
