package songs

import (
	"log"
	"net/http"
	"strings"

	"songshare/internal/web"
)

// HandleSearch proxies a free-text query to the external catalog. Provider
// failures surface as a generic upstream error, never the raw cause.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		web.WriteError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(query) > 200 {
		web.WriteError(w, http.StatusBadRequest, "query is too long")
		return
	}

	tracks, err := s.catalog.SearchTracks(r.Context(), query, 10)
	if err != nil {
		log.Printf("songs: search %q: %v", query, err)
		web.WriteError(w, http.StatusInternalServerError, "error searching songs")
		return
	}

	web.WriteJSON(w, http.StatusOK, tracks)
}

func (s *Server) HandleTrending(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.catalog.TopTracks(r.Context(), 10)
	if err != nil {
		log.Printf("songs: trending: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "error fetching trending songs")
		return
	}

	web.WriteJSON(w, http.StatusOK, tracks)
}
