package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeLastfm(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("method") {
		case "track.search":
			w.Write([]byte(`{
				"results": {"trackmatches": {"track": [
					{"name": "Yellow", "artist": "Coldplay", "listeners": "1500000",
					 "image": [{"size": "small", "#text": "s.png"}, {"size": "medium", "#text": "m.png"}]},
					{"name": "Clocks", "artist": "Coldplay", "listeners": "oops", "image": []}
				]}}
			}`))
		case "track.getInfo":
			if r.URL.Query().Get("track") == "Yellow" {
				w.Write([]byte(`{"track": {"duration": "269000"}}`))
			} else {
				w.Write([]byte(`{"track": {"duration": "0"}}`))
			}
		case "chart.gettoptracks":
			w.Write([]byte(`{
				"tracks": {"track": [
					{"name": "Top Hit", "artist": {"name": "Big Artist"}, "listeners": "9000000",
					 "image": [{"size": "medium", "#text": "top.png"}]}
				]}
			}`))
		default:
			http.Error(w, "unknown method", http.StatusBadRequest)
		}
	}))
}

func TestSearchTracks(t *testing.T) {
	srv := fakeLastfm(t)
	defer srv.Close()

	c := NewClient("test-key", srv.URL)

	tracks, err := c.SearchTracks(context.Background(), "coldplay", 10)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "Yellow", tracks[0].Name)
	assert.Equal(t, "Coldplay", tracks[0].Artist)
	assert.Equal(t, int64(1500000), tracks[0].Listeners)
	assert.Equal(t, 269, tracks[0].DurationSeconds)
	assert.Equal(t, "m.png", tracks[0].Image)

	// Unparseable listeners become zero, missing duration gets the default.
	assert.Equal(t, int64(0), tracks[1].Listeners)
	assert.Equal(t, defaultDurationSeconds, tracks[1].DurationSeconds)
	assert.Equal(t, "", tracks[1].Image)
}

func TestTopTracks(t *testing.T) {
	srv := fakeLastfm(t)
	defer srv.Close()

	c := NewClient("test-key", srv.URL)

	tracks, err := c.TopTracks(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Top Hit", tracks[0].Name)
	assert.Equal(t, "Big Artist", tracks[0].Artist)
	assert.Equal(t, "top.png", tracks[0].Image)
}

func TestUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)

	_, err := c.SearchTracks(context.Background(), "anything", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = c.TopTracks(context.Background(), 10)
	require.Error(t, err)
}

func TestMediumImage(t *testing.T) {
	assert.Equal(t, "", mediumImage(nil))
	assert.Equal(t, "a.png", mediumImage([]lfmImage{{Size: "small", URL: "a.png"}}))
	assert.Equal(t, "m.png", mediumImage([]lfmImage{
		{Size: "small", URL: "s.png"},
		{Size: "medium", URL: "m.png"},
		{Size: "large", URL: "l.png"},
	}))
}
