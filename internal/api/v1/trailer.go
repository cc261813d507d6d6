package v1

import (
	"net/http"
	"strings"

	"github.com/moodflix/moodflix/internal/trailer"
)

// getTrailer always answers 200 once a title is present; every upstream
// problem is reported in-band as a fallback.
func (s *Server) getTrailer(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMETER", "Missing required parameter: title")
		return
	}
	year := r.URL.Query().Get("year")

	writeJSON(w, http.StatusOK, toTrailerResponse(s.deps.Trailers.Resolve(r.Context(), title, year)))
}

func toTrailerResponse(res trailer.Result) trailerResponse {
	resp := trailerResponse{
		Title:        res.Title,
		ChannelTitle: res.ChannelTitle,
		PublishedAt:  res.PublishedAt,
		Cached:       res.Cached,
		Fallback:     res.Fallback,
		Reason:       string(res.Reason),
		Error:        res.Error,
	}
	if res.Found() {
		id := res.VideoID
		resp.VideoID = &id
	}
	return resp
}
