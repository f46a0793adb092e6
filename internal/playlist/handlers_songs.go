package playlist

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"

	"songshare/internal/auth"
	"songshare/internal/web"
)

// handleAddSong resolves or creates the song, then appends it to the
// playlist. The whole sequence runs in one transaction; the playlist row is
// locked up front so concurrent adds cannot compute the same position.
func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		SongID   int64    `json:"songId"`
		SongData *NewSong `json:"songData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ref := SongRef{ID: body.SongID, New: body.SongData}
	if ref.ID <= 0 && ref.New == nil {
		web.WriteError(w, http.StatusBadRequest, "songId or songData is required")
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("playlist: add song begin tx: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	var creatorID int64
	err = tx.QueryRow(ctx, `
		SELECT creator_id FROM playlists WHERE playlist_id = $1 FOR UPDATE
	`, playlistID).Scan(&creatorID)
	if errors.Is(err, pgx.ErrNoRows) {
		web.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("playlist: add song fetch playlist: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if creatorID != userID {
		web.WriteError(w, http.StatusForbidden, "not the playlist owner")
		return
	}

	songID, err := ResolveSongTx(ctx, tx, ref)
	switch {
	case errors.Is(err, ErrNotFound):
		web.WriteError(w, http.StatusNotFound, "song not found")
		return
	case errors.Is(err, ErrValidation):
		web.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("playlist: add song resolve: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2
		)
	`, playlistID, songID).Scan(&exists); err != nil {
		log.Printf("playlist: add song duplicate check: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists {
		web.WriteError(w, http.StatusConflict, "song is already in this playlist")
		return
	}

	var position int
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(position_in_playlist), 0) + 1
		FROM playlist_songs
		WHERE playlist_id = $1
	`, playlistID).Scan(&position); err != nil {
		log.Printf("playlist: add song position: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id, position_in_playlist)
		VALUES ($1, $2, $3)
	`, playlistID, songID, position); err != nil {
		log.Printf("playlist: add song insert: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("playlist: add song commit: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.events.Publish(ctx, "track.added", map[string]any{
		"playlistId": playlistID,
		"songId":     songID,
		"position":   position,
	})

	web.WriteJSON(w, http.StatusCreated, map[string]any{
		"songId":   songID,
		"position": position,
	})
}

// handleRemoveSong deletes the entry and recomputes the remaining positions
// as a dense 1..N sequence, atomically. A reader can never observe a gap.
func (s *Server) handleRemoveSong(w http.ResponseWriter, r *http.Request) {
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
	songID, err := idParam(r, "songId")
	if err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid song id")
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("playlist: remove song begin tx: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	var creatorID int64
	err = tx.QueryRow(ctx, `
		SELECT creator_id FROM playlists WHERE playlist_id = $1 FOR UPDATE
	`, playlistID).Scan(&creatorID)
	if errors.Is(err, pgx.ErrNoRows) {
		web.WriteError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("playlist: remove song fetch playlist: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if creatorID != userID {
		web.WriteError(w, http.StatusForbidden, "not the playlist owner")
		return
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID)
	if err != nil {
		log.Printf("playlist: remove song delete: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}
	if tag.RowsAffected() == 0 {
		web.WriteError(w, http.StatusNotFound, "song is not in this playlist")
		return
	}

	if _, err := tx.Exec(ctx, `
		WITH numbered AS (
			SELECT song_id,
			       ROW_NUMBER() OVER (ORDER BY position_in_playlist) AS new_position
			FROM playlist_songs
			WHERE playlist_id = $1
		)
		UPDATE playlist_songs ps
		SET position_in_playlist = n.new_position
		FROM numbered n
		WHERE ps.playlist_id = $1 AND ps.song_id = n.song_id
	`, playlistID); err != nil {
		log.Printf("playlist: remove song reindex: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("playlist: remove song commit: %v", err)
		web.WriteError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.events.Publish(ctx, "track.removed", map[string]any{
		"playlistId": playlistID,
		"songId":     songID,
	})

	web.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
