package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"songshare/internal/auth"
	"songshare/internal/playlist"
	"songshare/internal/web"
)

func (s *Server) handleRecommendPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sender, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body struct {
		PlaylistID  int64  `json:"playlistId"`
		RecipientID int64  `json:"recipientId"`
		Reason      string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.PlaylistID <= 0 {
		web.WriteError(w, http.StatusBadRequest, "playlistId is required")
		return
	}
	if body.RecipientID <= 0 || body.RecipientID == sender {
		web.WriteError(w, http.StatusBadRequest, "invalid recipient")
		return
	}

	exists, err := s.userExists(ctx, body.RecipientID)
	if err != nil {
		log.Printf("recommend: playlist recipient check: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !exists {
		web.WriteError(w, http.StatusNotFound, "recipient not found")
		return
	}

	var playlistExists bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM playlists WHERE playlist_id = $1)
	`, body.PlaylistID).Scan(&playlistExists); err != nil {
		log.Printf("recommend: playlist check: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !playlistExists {
		web.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("recommend: playlist begin tx: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	var recID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO recommendations (recommender_id, recipient_id, recommendation_type, status)
		VALUES ($1, $2, 'playlist', 'pending')
		RETURNING recommendation_id
	`, sender, body.RecipientID).Scan(&recID); err != nil {
		log.Printf("recommend: playlist insert recommendation: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO playlist_recommendations (recommendation_id, playlist_id, reason)
		VALUES ($1, $2, $3)
	`, recID, body.PlaylistID, strings.TrimSpace(body.Reason)); err != nil {
		log.Printf("recommend: playlist insert detail: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("recommend: playlist commit: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.events.Publish(ctx, "recommendation.created", map[string]any{
		"recommendationId": recID,
		"kind":             kindPlaylist,
		"recipientId":      body.RecipientID,
	})

	web.WriteJSON(w, http.StatusCreated, map[string]any{
		"recommendationId": recID,
	})
}

func (s *Server) handleListPlaylistRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := s.db.Query(ctx, `
		SELECT r.recommendation_id, p.playlist_id, p.name, p.description,
		       u.username, pr.reason, r.recommendation_date
		FROM recommendations r
		JOIN playlist_recommendations pr ON r.recommendation_id = pr.recommendation_id
		JOIN playlists p ON pr.playlist_id = p.playlist_id
		JOIN users u ON r.recommender_id = u.user_id
		WHERE r.recipient_id = $1 AND r.status = 'pending'
		ORDER BY r.recommendation_date DESC
	`, userID)
	if err != nil {
		log.Printf("recommend: list playlists: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	recs := []PlaylistRecommendation{}
	for rows.Next() {
		var rec PlaylistRecommendation
		if err := rows.Scan(
			&rec.RecommendationID,
			&rec.PlaylistID,
			&rec.Name,
			&rec.Description,
			&rec.RecommenderName,
			&rec.Reason,
			&rec.Date,
		); err != nil {
			log.Printf("recommend: list playlists scan: %v", err)
			web.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		log.Printf("recommend: list playlists rows: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, recs)
}

// handleAcceptPlaylistRecommendation deep-copies the recommended playlist
// into the recipient's library and marks the recommendation accepted, all in
// one transaction. The recommendation row is locked so a concurrent accept
// cannot produce a second copy; only a pending recommendation can be
// accepted.
func (s *Server) handleAcceptPlaylistRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recID, err := recIDParam(r)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid recommendation id")
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("recommend: accept begin tx: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	recipient, status, playlistID, err := s.lockPlaylistRecommendation(ctx, tx, recID)
	if errors.Is(err, pgx.ErrNoRows) {
		web.WriteError(w, http.StatusNotFound, "recommendation not found")
		return
	}
	if err != nil {
		log.Printf("recommend: accept fetch: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if recipient != actor {
		web.WriteError(w, http.StatusForbidden, "not the recipient of this recommendation")
		return
	}
	if status != statusPending {
		web.WriteError(w, http.StatusConflict, "recommendation already "+status)
		return
	}

	copied, err := playlist.CopyPlaylistTx(ctx, tx, playlistID, actor)
	if errors.Is(err, playlist.ErrNotFound) {
		web.WriteError(w, http.StatusNotFound, "recommended playlist no longer exists")
		return
	}
	if err != nil {
		log.Printf("recommend: accept copy: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if _, err := tx.Exec(ctx, `
		UPDATE recommendations SET status = 'accepted' WHERE recommendation_id = $1
	`, recID); err != nil {
		log.Printf("recommend: accept update status: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("recommend: accept commit: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.events.Publish(ctx, "recommendation.accepted", map[string]any{
		"recommendationId": recID,
		"newPlaylistId":    copied.ID,
	})

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"newPlaylistId": copied.ID,
	})
}

// handleRejectPlaylistRecommendation marks a pending recommendation
// rejected. Only the recipient may reject, and a terminal status is final.
func (s *Server) handleRejectPlaylistRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recID, err := recIDParam(r)
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid recommendation id")
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("recommend: reject begin tx: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	recipient, status, _, err := s.lockPlaylistRecommendation(ctx, tx, recID)
	if errors.Is(err, pgx.ErrNoRows) {
		web.WriteError(w, http.StatusNotFound, "recommendation not found")
		return
	}
	if err != nil {
		log.Printf("recommend: reject fetch: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if recipient != actor {
		web.WriteError(w, http.StatusForbidden, "not the recipient of this recommendation")
		return
	}
	if status != statusPending {
		web.WriteError(w, http.StatusConflict, "recommendation already "+status)
		return
	}

	if _, err := tx.Exec(ctx, `
		UPDATE recommendations SET status = 'rejected' WHERE recommendation_id = $1
	`, recID); err != nil {
		log.Printf("recommend: reject update status: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("recommend: reject commit: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]string{"status": statusRejected})
}

func (s *Server) lockPlaylistRecommendation(ctx context.Context, tx pgx.Tx, recID int64) (recipient int64, status string, playlistID int64, err error) {
	err = tx.QueryRow(ctx, `
		SELECT r.recipient_id, r.status, pr.playlist_id
		FROM recommendations r
		JOIN playlist_recommendations pr ON r.recommendation_id = pr.recommendation_id
		WHERE r.recommendation_id = $1
		FOR UPDATE OF r
	`, recID).Scan(&recipient, &status, &playlistID)
	return recipient, status, playlistID, err
}

func recIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
