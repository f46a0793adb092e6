package auth

import (
	"time"

	"github.com/go-chi/chi/v5"

	"songshare/internal/store"
)

type Server struct {
	db        store.DB
	jwtSecret []byte
	accessTTL time.Duration
}

func NewServer(db store.DB, jwtSecret []byte, accessTTL time.Duration) *Server {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &Server{
		db:        db,
		jwtSecret: jwtSecret,
		accessTTL: accessTTL,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.Middleware)
		r.Get("/me", s.handleMe)
	})

	return r
}
