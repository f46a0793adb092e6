package songs

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"songshare/internal/auth"
	"songshare/internal/web"
)

type HistoryEntry struct {
	Title                 string    `json:"title"`
	Artist                string    `json:"artist"`
	ListenDate            time.Time `json:"listenDate"`
	ListenDurationSeconds int       `json:"listenDurationSeconds"`
}

// HandleListHistory returns the caller's twenty most recent listens.
func (s *Server) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := s.db.Query(ctx, `
		SELECT s.title, s.artist, ulh.listen_date, ulh.listen_duration_seconds
		FROM user_listening_history ulh
		JOIN songs s ON ulh.song_id = s.song_id
		WHERE ulh.user_id = $1
		ORDER BY ulh.listen_date DESC
		LIMIT 20
	`, userID)
	if err != nil {
		log.Printf("songs: list history: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	history := []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.Title, &h.Artist, &h.ListenDate, &h.ListenDurationSeconds); err != nil {
			log.Printf("songs: list history scan: %v", err)
			web.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		log.Printf("songs: list history rows: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, history)
}

func (s *Server) HandleAddHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body struct {
		SongID   int64 `json:"song_id"`
		Duration int   `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.SongID <= 0 {
		web.WriteError(w, http.StatusBadRequest, "song_id is required")
		return
	}
	if body.Duration < 0 {
		web.WriteError(w, http.StatusBadRequest, "duration must not be negative")
		return
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO user_listening_history (user_id, song_id, listen_duration_seconds)
		VALUES ($1, $2, $3)
	`, userID, body.SongID, body.Duration); err != nil {
		log.Printf("songs: add history: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
