package social

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"songshare/internal/web"
)

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}

	// Accepted edges count in either direction.
	rows, err := s.db.Query(r.Context(), `
		SELECT u.user_id, u.username, u.full_name
		FROM users u
		JOIN user_friendships uf
		  ON (u.user_id = uf.friend_id OR u.user_id = uf.user_id)
		WHERE (uf.user_id = $1 OR uf.friend_id = $1)
		  AND uf.status = 'accepted'
		  AND u.user_id <> $1
		ORDER BY u.username
	`, me)
	if err != nil {
		log.Printf("social: list friends: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	friends, err := scanFriendRows(rows)
	if err != nil {
		log.Printf("social: list friends scan: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, friends)
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	rows, err := s.db.Query(ctx, `
		SELECT u.user_id, u.username, u.full_name
		FROM users u
		JOIN user_friendships uf ON u.user_id = uf.user_id
		WHERE uf.friend_id = $1 AND uf.status = 'pending'
		ORDER BY u.username
	`, me)
	if err != nil {
		log.Printf("social: pending received: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	received, err := scanFriendRows(rows)
	if err != nil {
		log.Printf("social: pending received scan: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	rows, err = s.db.Query(ctx, `
		SELECT u.user_id, u.username, u.full_name
		FROM users u
		JOIN user_friendships uf ON u.user_id = uf.friend_id
		WHERE uf.user_id = $1 AND uf.status = 'pending'
		ORDER BY u.username
	`, me)
	if err != nil {
		log.Printf("social: pending sent: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	sent, err := scanFriendRows(rows)
	if err != nil {
		log.Printf("social: pending sent scan: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, PendingRequests{Received: received, Sent: sent})
}

func (s *Server) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}

	var body struct {
		FriendID int64 `json:"friendId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.FriendID <= 0 || body.FriendID == me {
		web.WriteError(w, http.StatusBadRequest, "invalid target user")
		return
	}

	ctx := r.Context()

	exists, err := s.userExists(ctx, body.FriendID)
	if err != nil {
		log.Printf("social: send request user check: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !exists {
		web.WriteError(w, http.StatusNotFound, "target user not found")
		return
	}

	var duplicate bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_friendships
			WHERE user_id = $1 AND friend_id = $2
			  AND status IN ('pending', 'accepted')
		)
	`, me, body.FriendID).Scan(&duplicate); err != nil {
		log.Printf("social: send request duplicate check: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if duplicate {
		web.WriteError(w, http.StatusConflict, "friend request already sent")
		return
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO user_friendships (user_id, friend_id, status)
		VALUES ($1, $2, 'pending')
	`, me, body.FriendID); err != nil {
		log.Printf("social: send request insert: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]string{"status": statusPending})
}

func (s *Server) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	from, err := friendIDParam(r)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	tag, err := s.db.Exec(r.Context(), `
		UPDATE user_friendships
		SET status = 'accepted'
		WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'
	`, from, me)
	if err != nil {
		log.Printf("social: accept request: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		web.WriteError(w, http.StatusNotFound, "no pending friend request")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]string{"status": statusAccepted})
}

// Declining is an idempotent delete: a missing request still reports success.
func (s *Server) handleDeclineRequest(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	from, err := friendIDParam(r)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	if _, err := s.db.Exec(r.Context(), `
		DELETE FROM user_friendships
		WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'
	`, from, me); err != nil {
		log.Printf("social: decline request: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUnfriend(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	other, err := friendIDParam(r)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid friend id")
		return
	}

	if _, err := s.db.Exec(r.Context(), `
		DELETE FROM user_friendships
		WHERE (user_id = $1 AND friend_id = $2)
		   OR (user_id = $2 AND friend_id = $1)
	`, me, other); err != nil {
		log.Printf("social: unfriend: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSearchUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		web.WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	var u FriendUser
	err := s.db.QueryRow(r.Context(), `
		SELECT user_id, username, full_name
		FROM users
		WHERE username = $1
	`, username).Scan(&u.UserID, &u.Username, &u.FullName)
	if errors.Is(err, pgx.ErrNoRows) {
		web.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		log.Printf("social: search user: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, u)
}
