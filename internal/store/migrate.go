package store

import (
	"context"
	"log"
)

// AutoMigrate creates the full schema. Statements are idempotent so the
// service can be restarted against an existing database.
func AutoMigrate(ctx context.Context, db DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id       BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name     TEXT NOT NULL DEFAULT '',
			date_joined   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS songs (
			song_id           BIGSERIAL PRIMARY KEY,
			title             TEXT NOT NULL,
			artist            TEXT NOT NULL,
			duration_seconds  INT NOT NULL DEFAULT 0,
			global_play_count BIGINT NOT NULL DEFAULT 0,
			UNIQUE (title, artist)
		)`,
		`CREATE TABLE IF NOT EXISTS playlists (
			playlist_id   BIGSERIAL PRIMARY KEY,
			creator_id    BIGINT NOT NULL REFERENCES users(user_id),
			name          TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			is_public     BOOLEAN NOT NULL DEFAULT FALSE,
			creation_date TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// The position constraint is deferred so that in-transaction
		// reshuffles (remove + compact) never trip it mid-statement while
		// every commit still leaves a dense, duplicate-free sequence.
		`CREATE TABLE IF NOT EXISTS playlist_songs (
			playlist_id          BIGINT NOT NULL REFERENCES playlists(playlist_id) ON DELETE CASCADE,
			song_id              BIGINT NOT NULL REFERENCES songs(song_id),
			position_in_playlist INT NOT NULL,
			added_date           TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (playlist_id, song_id),
			UNIQUE (playlist_id, position_in_playlist) DEFERRABLE INITIALLY DEFERRED
		)`,
		`CREATE TABLE IF NOT EXISTS user_friendships (
			user_id         BIGINT NOT NULL REFERENCES users(user_id),
			friend_id       BIGINT NOT NULL REFERENCES users(user_id),
			status          TEXT NOT NULL DEFAULT 'pending',
			friendship_date TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, friend_id)
		)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			recommendation_id   BIGSERIAL PRIMARY KEY,
			recommender_id      BIGINT NOT NULL REFERENCES users(user_id),
			recipient_id        BIGINT NOT NULL REFERENCES users(user_id),
			recommendation_type TEXT NOT NULL,
			status              TEXT NOT NULL DEFAULT 'pending',
			recommendation_date TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS song_recommendations (
			recommendation_id BIGINT PRIMARY KEY REFERENCES recommendations(recommendation_id) ON DELETE CASCADE,
			song_id           BIGINT NOT NULL REFERENCES songs(song_id),
			reason            TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS playlist_recommendations (
			recommendation_id BIGINT PRIMARY KEY REFERENCES recommendations(recommendation_id) ON DELETE CASCADE,
			playlist_id       BIGINT NOT NULL REFERENCES playlists(playlist_id) ON DELETE CASCADE,
			reason            TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS user_listening_history (
			history_id              BIGSERIAL PRIMARY KEY,
			user_id                 BIGINT NOT NULL REFERENCES users(user_id),
			song_id                 BIGINT NOT NULL REFERENCES songs(song_id),
			listen_date             TIMESTAMPTZ NOT NULL DEFAULT now(),
			listen_duration_seconds INT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_playlists_creator ON playlists(creator_id, creation_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_recipient ON recommendations(recipient_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user ON user_listening_history(user_id, listen_date DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			log.Printf("store: migrate: %v", err)
			return err
		}
	}
	return nil
}
