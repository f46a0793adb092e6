package recommend

import (
	"context"

	"github.com/go-chi/chi/v5"

	"songshare/internal/events"
	"songshare/internal/store"
)

type Server struct {
	db     store.DB
	events *events.Publisher
}

func NewServer(db store.DB, ev *events.Publisher) *Server {
	return &Server{
		db:     db,
		events: ev,
	}
}

// PlaylistRecsRouter serves the playlist recommendation lifecycle, mounted
// under /api/recommendations/playlists. Song recommendation handlers are
// composed into the /songs route group by the caller.
func (s *Server) PlaylistRecsRouter() chi.Router {
	r := chi.NewRouter()

	r.Post("/", s.handleRecommendPlaylist)
	r.Get("/", s.handleListPlaylistRecommendations)
	r.Post("/{id}/accept", s.handleAcceptPlaylistRecommendation)
	r.Post("/{id}/reject", s.handleRejectPlaylistRecommendation)

	return r
}

func (s *Server) userExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)
	`, userID).Scan(&exists)
	return exists, err
}
