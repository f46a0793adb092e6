package recommend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func songRecsRouter(s *Server) chi.Router {
	r := chi.NewRouter()
	r.Post("/recommend", s.HandleRecommendSong)
	r.Get("/recommendations", s.HandleListSongRecommendations)
	r.Get("/top-recommendations", s.HandleTopRecommendedSongs)
	return r
}

func TestHandleRecommendSong(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()
	r := songRecsRouter(s)

	sender := int64(1)

	t.Run("ToFriendByID", func(t *testing.T) {
		recipient := int64(2)

		mock.ExpectQuery("SELECT 1 FROM users").
			WithArgs(recipient).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT song_id FROM songs WHERE song_id").
			WithArgs(int64(100)).
			WillReturnRows(pgxmock.NewRows([]string{"song_id"}).AddRow(int64(100)))
		mock.ExpectQuery("INSERT INTO recommendations").
			WithArgs(sender, recipient).
			WillReturnRows(pgxmock.NewRows([]string{"recommendation_id"}).AddRow(int64(88)))
		mock.ExpectExec("INSERT INTO song_recommendations").
			WithArgs(int64(88), int64(100), "banger").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("POST", "/recommend", sender, map[string]any{
			"songId":       100,
			"recipient_id": recipient,
			"reason":       "banger",
		}))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"recommendationId":88`)
	})

	t.Run("SelfWithInlineSong", func(t *testing.T) {
		// No recipient means self, which skips the existence check.
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT song_id FROM songs WHERE title").
			WithArgs("Found Track", "Found Artist").
			WillReturnRows(pgxmock.NewRows([]string{"song_id"}).AddRow(int64(61)))
		mock.ExpectQuery("INSERT INTO recommendations").
			WithArgs(sender, sender).
			WillReturnRows(pgxmock.NewRows([]string{"recommendation_id"}).AddRow(int64(89)))
		mock.ExpectExec("INSERT INTO song_recommendations").
			WithArgs(int64(89), int64(61), "").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("POST", "/recommend", sender, map[string]any{
			"song_data": map[string]any{
				"name":   "Found Track",
				"artist": "Found Artist",
			},
		}))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("RecipientNotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT 1 FROM users").
			WithArgs(int64(99)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("POST", "/recommend", sender, map[string]any{
			"songId":       100,
			"recipient_id": 99,
		}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("SongNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT song_id FROM songs WHERE song_id").
			WithArgs(int64(404)).
			WillReturnError(pgx.ErrNoRows)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("POST", "/recommend", sender, map[string]any{
			"songId": 404,
		}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MissingSongRef", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("POST", "/recommend", sender, map[string]any{
			"reason": "no song here",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleListSongRecommendations(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()
	r := songRecsRouter(s)

	me := int64(2)

	t.Run("Success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{
			"recommendation_id", "title", "artist", "username", "reason", "recommendation_date",
		}).
			AddRow(int64(88), "Song A", "Artist A", "alice", "banger", time.Now()).
			AddRow(int64(87), "Song B", "Artist B", "bob", "", time.Now().Add(-time.Minute))

		mock.ExpectQuery("SELECT r.recommendation_id, s.title").
			WithArgs(me).
			WillReturnRows(rows)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("GET", "/recommendations", me, nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var recs []SongRecommendation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
		require.Len(t, recs, 2)
		assert.Equal(t, "Song A", recs[0].Title)
		assert.Equal(t, "alice", recs[0].RecommenderName)
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT r.recommendation_id, s.title").
			WithArgs(me).
			WillReturnRows(pgxmock.NewRows([]string{
				"recommendation_id", "title", "artist", "username", "reason", "recommendation_date",
			}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, newAuthedRequest("GET", "/recommendations", me, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestHandleTopRecommendedSongs(t *testing.T) {
	s, mock := setupMockServer(t)
	defer mock.Close()
	r := songRecsRouter(s)

	rows := pgxmock.NewRows([]string{"title", "artist", "recommendation_count"}).
		AddRow("Hit One", "Artist A", int64(12)).
		AddRow("Hit Two", "Artist B", int64(7))

	mock.ExpectQuery("SELECT s.title, s.artist, COUNT").
		WillReturnRows(rows)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newAuthedRequest("GET", "/top-recommendations", int64(1), nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var top []TopSong
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
	require.Len(t, top, 2)
	assert.Equal(t, int64(12), top[0].RecommendationCount)
}
