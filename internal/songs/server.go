package songs

import (
	"context"

	"songshare/internal/catalog"
	"songshare/internal/store"
)

// Provider is the external track catalog the search endpoints proxy to.
type Provider interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]catalog.Track, error)
	TopTracks(ctx context.Context, limit int) ([]catalog.Track, error)
}

type Server struct {
	db      store.DB
	catalog Provider
}

func NewServer(db store.DB, provider Provider) *Server {
	return &Server{
		db:      db,
		catalog: provider,
	}
}
