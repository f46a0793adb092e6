package playlist

import (
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

// Router returns the playlist routes. The caller mounts it behind the
// auth middleware; every handler expects an authenticated user.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/", s.handleCreatePlaylist)
	r.Get("/", s.handleListPlaylists)
	r.Get("/{id}", s.handleGetPlaylist)
	r.Delete("/{id}", s.handleDeletePlaylist)

	r.Post("/{id}/songs", s.handleAddSong)
	r.Delete("/{id}/songs/{songId}", s.handleRemoveSong)

	return r
}
