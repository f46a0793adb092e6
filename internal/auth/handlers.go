package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"songshare/internal/store"
	"songshare/internal/web"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Username = strings.TrimSpace(body.Username)
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	body.FullName = strings.TrimSpace(body.FullName)

	if len(body.Username) < 3 {
		web.WriteError(w, http.StatusBadRequest, "username must be at least 3 characters")
		return
	}
	if body.Email == "" || !strings.Contains(body.Email, "@") {
		web.WriteError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(body.Password) < 6 {
		web.WriteError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("auth: register hash: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var user User
	err = s.db.QueryRow(r.Context(), `
		INSERT INTO users (username, email, password_hash, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, username, email, full_name, date_joined
	`, body.Username, body.Email, string(hash), body.FullName).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.DateJoined,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			web.WriteError(w, http.StatusConflict, "username or email already registered")
			return
		}
		log.Printf("auth: register insert: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	tokens, err := s.issueToken(user)
	if err != nil {
		log.Printf("auth: register issue token: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	web.WriteJSON(w, http.StatusCreated, map[string]any{
		"user":        user,
		"accessToken": tokens.AccessToken,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	email := strings.TrimSpace(strings.ToLower(creds.Email))
	if email == "" || creds.Password == "" {
		web.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var user User
	err := s.db.QueryRow(r.Context(), `
		SELECT user_id, username, email, password_hash, full_name, date_joined
		FROM users
		WHERE email = $1
	`, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.DateJoined,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		web.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		log.Printf("auth: login fetch user: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		web.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	tokens, err := s.issueToken(user)
	if err != nil {
		log.Printf("auth: login issue token: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"accessToken": tokens.AccessToken,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var user User
	err := s.db.QueryRow(r.Context(), `
		SELECT user_id, username, email, full_name, date_joined
		FROM users
		WHERE user_id = $1
	`, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.DateJoined,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		web.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		log.Printf("auth: me fetch user: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	web.WriteJSON(w, http.StatusOK, user)
}
