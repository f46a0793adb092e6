package social

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"songshare/internal/auth"
	"songshare/internal/store"
	"songshare/internal/web"
)

type Server struct {
	db store.DB
}

func NewServer(db store.DB) *Server {
	return &Server{db: db}
}

// Router serves the friend lifecycle under /friends.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.handleListFriends)
	r.Get("/pending", s.handleListPending)
	r.Get("/search", s.handleSearchUser)
	r.Post("/request", s.handleSendRequest)
	r.Put("/accept/{friendId}", s.handleAcceptRequest)
	r.Delete("/decline/{friendId}", s.handleDeclineRequest)
	r.Delete("/unfriend/{friendId}", s.handleUnfriend)

	return r
}

// UsersRouter serves the user directory under /users.
func (s *Server) UsersRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/list", s.handleListUsers)
	return r
}

func (s *Server) userExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)
	`, userID).Scan(&exists)
	return exists, err
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return userID, true
}

func friendIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "friendId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid friend id")
	}
	return id, nil
}

func scanFriendRows(rows pgx.Rows) ([]FriendUser, error) {
	defer rows.Close()

	users := []FriendUser{}
	for rows.Next() {
		var u FriendUser
		if err := rows.Scan(&u.UserID, &u.Username, &u.FullName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}

	rows, err := s.db.Query(r.Context(), `
		SELECT user_id, username, full_name
		FROM users
		WHERE user_id <> $1
		ORDER BY username
	`, me)
	if err != nil {
		log.Printf("social: list users: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	users, err := scanFriendRows(rows)
	if err != nil {
		log.Printf("social: list users scan: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, users)
}
