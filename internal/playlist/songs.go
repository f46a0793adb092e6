package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"songshare/internal/store"
)

// ResolveSongTx resolves a SongRef to a persisted song id inside the
// caller's transaction. Inline song data is deduplicated by exact
// (title, artist) match; only a miss creates a new row.
func ResolveSongTx(ctx context.Context, q store.Querier, ref SongRef) (int64, error) {
	if ref.ID > 0 {
		var id int64
		err := q.QueryRow(ctx, `
			SELECT song_id FROM songs WHERE song_id = $1
		`, ref.ID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("song %d: %w", ref.ID, ErrNotFound)
		}
		if err != nil {
			return 0, err
		}
		return id, nil
	}

	if ref.New == nil {
		return 0, fmt.Errorf("song reference required: %w", ErrValidation)
	}

	title := strings.TrimSpace(ref.New.Name)
	artist := strings.TrimSpace(ref.New.Artist)
	if title == "" || artist == "" {
		return 0, fmt.Errorf("song name and artist are required: %w", ErrValidation)
	}

	var id int64
	err := q.QueryRow(ctx, `
		SELECT song_id FROM songs WHERE title = $1 AND artist = $2
	`, title, artist).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// The ON CONFLICT arm covers the race where a concurrent transaction
	// inserted the same pair between our select and this insert.
	err = q.QueryRow(ctx, `
		INSERT INTO songs (title, artist, duration_seconds, global_play_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (title, artist) DO UPDATE SET title = EXCLUDED.title
		RETURNING song_id
	`, title, artist, ref.New.DurationSeconds, ref.New.Listeners).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
