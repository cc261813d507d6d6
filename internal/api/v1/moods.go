package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/moodflix/moodflix/internal/discovery"
	"github.com/moodflix/moodflix/internal/mood"
)

func (s *Server) listMoods(w http.ResponseWriter, _ *http.Request) {
	catalog := s.deps.Moods
	moods := make([]moodInfo, 0, len(catalog.Moods()))
	for _, m := range catalog.Moods() {
		moods = append(moods, moodInfo{Name: m, Genres: catalog.GenresFor(m)})
	}
	writeJSON(w, http.StatusOK, listMoodsResponse{Moods: moods, Stats: catalog.Stats()})
}

func (s *Server) moodMovies(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("mood")
	count := queryInt(r, "count", mood.DefaultSeedCount)

	movies, err := s.deps.Discovery.Prefetch(r.Context(), name, count)
	if errors.Is(err, discovery.ErrUnknownMood) {
		msg := fmt.Sprintf("unknown mood %q", name)
		if suggestion := s.deps.Moods.Suggest(name); suggestion != "" {
			msg += fmt.Sprintf(", did you mean %q?", suggestion)
		}
		writeError(w, http.StatusNotFound, "UNKNOWN_MOOD", msg)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	fallback := len(movies) > 0 && movies[0].Fallback
	writeJSON(w, http.StatusOK, moodMoviesResponse{
		Mood:     name,
		Genres:   s.deps.Moods.GenresFor(name),
		Movies:   movies,
		Fallback: fallback,
	})
}
