package v1

import (
	"net/http"
	"slices"
)

// selectedCaches returns the caches named by ?name=, or all of them.
func (s *Server) selectedCaches(r *http.Request) (map[string]CacheAdmin, bool) {
	name := r.URL.Query().Get("name")
	if name == "" {
		return s.deps.Caches, true
	}
	c, ok := s.deps.Caches[name]
	if !ok {
		return nil, false
	}
	return map[string]CacheAdmin{name: c}, true
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	caches, ok := s.selectedCaches(r)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown cache")
		return
	}

	resp := cacheStatsResponse{Caches: make(map[string]cacheStats, len(caches))}
	for name, c := range caches {
		st := c.CacheStats()
		keys := st.Keys
		if keys == nil {
			keys = []string{}
		}
		resp.Caches[name] = cacheStats{Size: st.Size, Keys: keys}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	caches, ok := s.selectedCaches(r)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown cache")
		return
	}

	names := make([]string, 0, len(caches))
	for name, c := range caches {
		c.ClearCache()
		names = append(names, name)
	}
	slices.Sort(names)
	s.log.Info("caches cleared", "caches", names)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pruneCache(w http.ResponseWriter, r *http.Request) {
	caches, ok := s.selectedCaches(r)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown cache")
		return
	}

	resp := pruneResponse{Removed: make(map[string]int, len(caches))}
	for name, c := range caches {
		n, err := c.PruneCache()
		if err != nil {
			s.log.Error("prune failed", "cache", name, "error", err)
			writeError(w, http.StatusInternalServerError, "PRUNE_FAILED", err.Error())
			return
		}
		resp.Removed[name] = n
	}
	writeJSON(w, http.StatusOK, resp)
}
