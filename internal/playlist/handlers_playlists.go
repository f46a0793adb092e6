package playlist

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"songshare/internal/auth"
	"songshare/internal/web"
)

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)

	if body.Name == "" {
		web.WriteError(w, http.StatusBadRequest, "playlist name is required")
		return
	}
	if len(body.Name) > 200 {
		web.WriteError(w, http.StatusBadRequest, "playlist name is too long")
		return
	}

	var pl Playlist
	err := s.db.QueryRow(ctx, `
		INSERT INTO playlists (creator_id, name, description, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING playlist_id, creator_id, name, description, is_public, creation_date
	`, userID, body.Name, body.Description, body.IsPublic).Scan(
		&pl.ID,
		&pl.CreatorID,
		&pl.Name,
		&pl.Description,
		&pl.IsPublic,
		&pl.CreationDate,
	)
	if err != nil {
		log.Printf("playlist: create: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.events.Publish(ctx, "playlist.created", pl)

	web.WriteJSON(w, http.StatusCreated, pl)
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := s.db.Query(ctx, `
		SELECT playlist_id, creator_id, name, description, is_public, creation_date
		FROM playlists
		WHERE creator_id = $1
		ORDER BY creation_date DESC
	`, userID)
	if err != nil {
		log.Printf("playlist: list: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		var pl Playlist
		if err := rows.Scan(
			&pl.ID,
			&pl.CreatorID,
			&pl.Name,
			&pl.Description,
			&pl.IsPublic,
			&pl.CreationDate,
		); err != nil {
			log.Printf("playlist: list scan: %v", err)
			web.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}
		playlists = append(playlists, pl)
	}
	if err := rows.Err(); err != nil {
		log.Printf("playlist: list rows: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	playlistID, err := idParam(r, "id")
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	// Owner or public, otherwise 404: a private playlist's existence is
	// not distinguishable from a missing one.
	var pl Playlist
	err = s.db.QueryRow(ctx, `
		SELECT playlist_id, creator_id, name, description, is_public, creation_date
		FROM playlists
		WHERE playlist_id = $1 AND (creator_id = $2 OR is_public = TRUE)
	`, playlistID, userID).Scan(
		&pl.ID,
		&pl.CreatorID,
		&pl.Name,
		&pl.Description,
		&pl.IsPublic,
		&pl.CreationDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		web.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("playlist: get: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	rows, err := s.db.Query(ctx, `
		SELECT s.song_id, s.title, s.artist, s.duration_seconds, s.global_play_count,
		       ps.position_in_playlist, ps.added_date
		FROM songs s
		JOIN playlist_songs ps ON s.song_id = ps.song_id
		WHERE ps.playlist_id = $1
		ORDER BY ps.position_in_playlist ASC
	`, playlistID)
	if err != nil {
		log.Printf("playlist: get entries: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	songs := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.Title,
			&e.Artist,
			&e.DurationSeconds,
			&e.GlobalPlayCount,
			&e.Position,
			&e.AddedDate,
		); err != nil {
			log.Printf("playlist: get entries scan: %v", err)
			web.WriteError(w, http.StatusInternalServerError, "database error")
			return
		}
		songs = append(songs, e)
	}
	if err := rows.Err(); err != nil {
		log.Printf("playlist: get entries rows: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"playlist": pl,
		"songs":    songs,
	})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	playlistID, err := idParam(r, "id")
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("playlist: delete begin tx: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	var creatorID int64
	err = tx.QueryRow(ctx, `
		SELECT creator_id FROM playlists WHERE playlist_id = $1
	`, playlistID).Scan(&creatorID)
	if errors.Is(err, pgx.ErrNoRows) {
		web.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("playlist: delete fetch: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if creatorID != userID {
		web.WriteError(w, http.StatusForbidden, "not the playlist owner")
		return
	}

	// Entries first, then the parent row.
	if _, err := tx.Exec(ctx, `
		DELETE FROM playlist_songs WHERE playlist_id = $1
	`, playlistID); err != nil {
		log.Printf("playlist: delete entries: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM playlists WHERE playlist_id = $1
	`, playlistID); err != nil {
		log.Printf("playlist: delete playlist: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("playlist: delete commit: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.events.Publish(ctx, "playlist.deleted", map[string]any{"playlistId": playlistID})

	web.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
