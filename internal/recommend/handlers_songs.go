package recommend

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"songshare/internal/auth"
	"songshare/internal/playlist"
	"songshare/internal/web"
)

// HandleRecommendSong creates a pending song recommendation. The song is
// resolved with the same (title, artist) dedup rule as playlist adds; the
// song row, the recommendation and its detail are written atomically.
// An omitted recipient means the sender is recommending to themselves.
func (s *Server) HandleRecommendSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sender, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body struct {
		SongID      int64             `json:"songId"`
		SongData    *playlist.NewSong `json:"song_data"`
		RecipientID int64             `json:"recipient_id"`
		Reason      string            `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.SongID <= 0 && body.SongData == nil {
		web.WriteError(w, http.StatusBadRequest, "songId or song_data is required")
		return
	}

	recipient := body.RecipientID
	if recipient == 0 {
		recipient = sender
	}
	if recipient < 0 {
		web.WriteError(w, http.StatusBadRequest, "invalid recipient")
		return
	}
	if recipient != sender {
		exists, err := s.userExists(ctx, recipient)
		if err != nil {
			log.Printf("recommend: song recipient check: %v", err)
			web.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}
		if !exists {
			web.WriteError(w, http.StatusNotFound, "recipient not found")
			return
		}
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("recommend: song begin tx: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	songID, err := playlist.ResolveSongTx(ctx, tx, playlist.SongRef{ID: body.SongID, New: body.SongData})
	switch {
	case errors.Is(err, playlist.ErrNotFound):
		web.WriteError(w, http.StatusNotFound, "song not found")
		return
	case errors.Is(err, playlist.ErrValidation):
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("recommend: song resolve: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	var recID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO recommendations (recommender_id, recipient_id, recommendation_type, status)
		VALUES ($1, $2, 'song', 'pending')
		RETURNING recommendation_id
	`, sender, recipient).Scan(&recID); err != nil {
		log.Printf("recommend: song insert recommendation: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO song_recommendations (recommendation_id, song_id, reason)
		VALUES ($1, $2, $3)
	`, recID, songID, strings.TrimSpace(body.Reason)); err != nil {
		log.Printf("recommend: song insert detail: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("recommend: song commit: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.events.Publish(ctx, "recommendation.created", map[string]any{
		"recommendationId": recID,
		"kind":             kindSong,
		"recipientId":      recipient,
	})

	web.WriteJSON(w, http.StatusCreated, map[string]any{
		"recommendationId": recID,
		"songId":           songID,
	})
}

// HandleListSongRecommendations returns the caller's ten most recent
// inbound song recommendations, newest first.
func (s *Server) HandleListSongRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := s.db.Query(ctx, `
		SELECT r.recommendation_id, s.title, s.artist, u.username, sr.reason, r.recommendation_date
		FROM recommendations r
		JOIN song_recommendations sr ON r.recommendation_id = sr.recommendation_id
		JOIN songs s ON sr.song_id = s.song_id
		JOIN users u ON r.recommender_id = u.user_id
		WHERE r.recipient_id = $1
		ORDER BY r.recommendation_date DESC
		LIMIT 10
	`, userID)
	if err != nil {
		log.Printf("recommend: list songs: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	recs := []SongRecommendation{}
	for rows.Next() {
		var rec SongRecommendation
		if err := rows.Scan(
			&rec.RecommendationID,
			&rec.Title,
			&rec.Artist,
			&rec.RecommenderName,
			&rec.Reason,
			&rec.Date,
		); err != nil {
			log.Printf("recommend: list songs scan: %v", err)
			web.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		log.Printf("recommend: list songs rows: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, recs)
}

// HandleTopRecommendedSongs ranks songs by how many recommendations
// reference them and returns the top five.
func (s *Server) HandleTopRecommendedSongs(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(r.Context(), `
		SELECT s.title, s.artist, COUNT(sr.recommendation_id) AS recommendation_count
		FROM songs s
		JOIN song_recommendations sr ON s.song_id = sr.song_id
		GROUP BY s.song_id, s.title, s.artist
		ORDER BY recommendation_count DESC
		LIMIT 5
	`)
	if err != nil {
		log.Printf("recommend: top songs: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	top := []TopSong{}
	for rows.Next() {
		var t TopSong
		if err := rows.Scan(&t.Title, &t.Artist, &t.RecommendationCount); err != nil {
			log.Printf("recommend: top songs scan: %v", err)
			web.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}
		top = append(top, t)
	}
	if err := rows.Err(); err != nil {
		log.Printf("recommend: top songs rows: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, top)
}
