package playlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"songshare/internal/auth"
)

func setupMockServer(t *testing.T) (*Server, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewServer(mock, nil), mock
}

func newAuthedRequest(method, target string, userID int64, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(auth.ContextWithUserID(req.Context(), userID))
}

func playlistRows(id, creator int64, name string, public bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"playlist_id", "creator_id", "name", "description", "is_public", "creation_date",
	}).AddRow(id, creator, name, "", public, time.Now())
}

func TestHandleCreatePlaylist(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()
	r := s.Router()

	me := int64(1)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO playlists").
			WithArgs(me, "Road Trip", "", true).
			WillReturnRows(playlistRows(10, me, "Road Trip", true))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("POST", "/", me, map[string]any{
			"name":      "Road Trip",
			"is_public": true,
		}))

		assert.Equal(t, http.StatusCreated, w.Code)

		var pl Playlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pl))
		assert.Equal(t, int64(10), pl.ID)
		assert.Equal(t, "Road Trip", pl.Name)
		assert.True(t, pl.IsPublic)
	})

	t.Run("EmptyName", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("POST", "/", me, map[string]any{"name": "   "}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "name is required")
	})

	t.Run("NameTooLong", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("POST", "/", me, map[string]any{
			"name": strings.Repeat("x", 201),
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte("{broken")))
		req = req.WithContext(auth.ContextWithUserID(req.Context(), me))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/", bytes.NewReader([]byte(`{"name":"X"}`))))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleListPlaylists(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()
	r := s.Router()

	me := int64(1)

	t.Run("Success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{
			"playlist_id", "creator_id", "name", "description", "is_public", "creation_date",
		}).
			AddRow(int64(2), me, "Newer", "", true, time.Now()).
			AddRow(int64(1), me, "Older", "", false, time.Now().Add(-time.Hour))

		mock.ExpectQuery("SELECT playlist_id, creator_id, name").
			WithArgs(me).
			WillReturnRows(rows)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("GET", "/", me, nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var playlists []Playlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &playlists))
		require.Len(t, playlists, 2)
		assert.Equal(t, "Newer", playlists[0].Name)
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT playlist_id, creator_id, name").
			WithArgs(me).
			WillReturnRows(pgxmock.NewRows([]string{
				"playlist_id", "creator_id", "name", "description", "is_public", "creation_date",
			}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("GET", "/", me, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestHandleGetPlaylist(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()
	r := s.Router()

	me := int64(1)

	t.Run("OwnerWithSongs", func(t *testing.T) {
		mock.ExpectQuery("SELECT playlist_id, creator_id, name").
			WithArgs(int64(10), me).
			WillReturnRows(playlistRows(10, me, "Mine", false))

		songRows := pgxmock.NewRows([]string{
			"song_id", "title", "artist", "duration_seconds", "global_play_count",
			"position_in_playlist", "added_date",
		}).
			AddRow(int64(100), "First", "Artist A", 200, int64(5), 1, time.Now()).
			AddRow(int64(101), "Second", "Artist B", 180, int64(9), 2, time.Now())

		mock.ExpectQuery("SELECT s.song_id, s.title").
			WithArgs(int64(10)).
			WillReturnRows(songRows)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("GET", "/10", me, nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Playlist Playlist `json:"playlist"`
			Songs    []Entry  `json:"songs"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(10), resp.Playlist.ID)
		require.Len(t, resp.Songs, 2)
		assert.Equal(t, 1, resp.Songs[0].Position)
		assert.Equal(t, 2, resp.Songs[1].Position)
	})

	t.Run("PrivateNotVisible", func(t *testing.T) {
		// The visibility filter is part of the query, so a private
		// playlist of another user scans as no rows.
		mock.ExpectQuery("SELECT playlist_id, creator_id, name").
			WithArgs(int64(11), me).
			WillReturnError(pgx.ErrNoRows)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("GET", "/11", me, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("GET", "/abc", me, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleDeletePlaylist(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()
	r := s.Router()

	me := int64(1)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT creator_id FROM playlists").
			WithArgs(int64(10)).
			WillReturnRows(pgxmock.NewRows([]string{"creator_id"}).AddRow(me))
		mock.ExpectExec("DELETE FROM playlist_songs").
			WithArgs(int64(10)).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectExec("DELETE FROM playlists").
			WithArgs(int64(10)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("DELETE", "/10", me, nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT creator_id FROM playlists").
			WithArgs(int64(99)).
			WillReturnError(pgx.ErrNoRows)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("DELETE", "/99", me, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Forbidden", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT creator_id FROM playlists").
			WithArgs(int64(10)).
			WillReturnRows(pgxmock.NewRows([]string{"creator_id"}).AddRow(int64(2)))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("DELETE", "/10", me, nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT creator_id FROM playlists").
			WithArgs(int64(10)).
			WillReturnError(errors.New("db boom"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("DELETE", "/10", me, nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
