package playlist

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("invalid input")
)

type Playlist struct {
	ID           int64     `json:"playlistId"`
	CreatorID    int64     `json:"creatorId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsPublic     bool      `json:"isPublic"`
	CreationDate time.Time `json:"creationDate"`
}

type Song struct {
	ID              int64  `json:"songId"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	DurationSeconds int    `json:"durationSeconds"`
	GlobalPlayCount int64  `json:"globalPlayCount"`
}

// Entry is a song's membership in a playlist. Positions are a dense
// 1..N sequence within each playlist.
type Entry struct {
	Song
	Position  int       `json:"position"`
	AddedDate time.Time `json:"addedDate"`
}

// NewSong is inline song data for a track that may not be persisted yet,
// typically straight from a catalog search result.
type NewSong struct {
	Name            string `json:"name"`
	Artist          string `json:"artist"`
	DurationSeconds int    `json:"duration_seconds"`
	Listeners       int64  `json:"listeners"`
}

// SongRef points at a song either by id or by inline data. Exactly one of
// the two is set.
type SongRef struct {
	ID  int64
	New *NewSong
}
