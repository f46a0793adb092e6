package playlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const copiedNameSuffix = " (Recommended)"

// CopyPlaylistTx deep-copies a playlist and all its entries to a new
// playlist owned by newOwnerID, inside the caller's transaction. Entry
// positions are preserved exactly. The new playlist keeps the source's
// description and visibility; its name gets the " (Recommended)" suffix.
func CopyPlaylistTx(ctx context.Context, tx pgx.Tx, sourceID, newOwnerID int64) (Playlist, error) {
	var pl Playlist
	err := tx.QueryRow(ctx, `
		INSERT INTO playlists (creator_id, name, description, is_public)
		SELECT $1, name || $3, description, is_public
		FROM playlists
		WHERE playlist_id = $2
		RETURNING playlist_id, creator_id, name, description, is_public, creation_date
	`, newOwnerID, sourceID, copiedNameSuffix).Scan(
		&pl.ID,
		&pl.CreatorID,
		&pl.Name,
		&pl.Description,
		&pl.IsPublic,
		&pl.CreationDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Playlist{}, fmt.Errorf("playlist %d: %w", sourceID, ErrNotFound)
	}
	if err != nil {
		return Playlist{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id, position_in_playlist)
		SELECT $1, song_id, position_in_playlist
		FROM playlist_songs
		WHERE playlist_id = $2
	`, pl.ID, sourceID); err != nil {
		return Playlist{}, err
	}

	return pl, nil
}
