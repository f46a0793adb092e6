package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Client wraps the Last.fm track catalog API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type lfmImage struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

type lfmSearchResponse struct {
	Results struct {
		TrackMatches struct {
			Track []struct {
				Name      string     `json:"name"`
				Artist    string     `json:"artist"`
				Listeners string     `json:"listeners"`
				Image     []lfmImage `json:"image"`
			} `json:"track"`
		} `json:"trackmatches"`
	} `json:"results"`
}

type lfmTrackInfoResponse struct {
	Track struct {
		Duration string `json:"duration"` // milliseconds
	} `json:"track"`
}

type lfmChartResponse struct {
	Tracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
			Listeners string     `json:"listeners"`
			Image     []lfmImage `json:"image"`
		} `json:"track"`
	} `json:"tracks"`
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lastfm status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// SearchTracks resolves a free-text query to candidate tracks. Durations come
// from a per-track info lookup; a failed lookup falls back to a default
// instead of failing the whole search.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	params := url.Values{}
	params.Set("method", "track.search")
	params.Set("track", query)
	params.Set("limit", strconv.Itoa(limit))

	var body lfmSearchResponse
	if err := c.get(ctx, params, &body); err != nil {
		return nil, err
	}

	out := make([]Track, 0, len(body.Results.TrackMatches.Track))
	for _, t := range body.Results.TrackMatches.Track {
		listeners, _ := strconv.ParseInt(t.Listeners, 10, 64)

		duration, err := c.trackDuration(ctx, t.Artist, t.Name)
		if err != nil {
			log.Printf("catalog: track info %q/%q: %v", t.Artist, t.Name, err)
			duration = defaultDurationSeconds
		}

		out = append(out, Track{
			Name:            t.Name,
			Artist:          t.Artist,
			Listeners:       listeners,
			DurationSeconds: duration,
			Image:           mediumImage(t.Image),
		})
	}
	return out, nil
}

func (c *Client) trackDuration(ctx context.Context, artist, track string) (int, error) {
	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("artist", artist)
	params.Set("track", track)

	var body lfmTrackInfoResponse
	if err := c.get(ctx, params, &body); err != nil {
		return 0, err
	}

	ms, err := strconv.ParseInt(body.Track.Duration, 10, 64)
	if err != nil || ms <= 0 {
		return defaultDurationSeconds, nil
	}
	return int(ms / 1000), nil
}

// TopTracks returns the global chart toppers.
func (c *Client) TopTracks(ctx context.Context, limit int) ([]Track, error) {
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	params := url.Values{}
	params.Set("method", "chart.gettoptracks")
	params.Set("limit", strconv.Itoa(limit))

	var body lfmChartResponse
	if err := c.get(ctx, params, &body); err != nil {
		return nil, err
	}

	out := make([]Track, 0, len(body.Tracks.Track))
	for _, t := range body.Tracks.Track {
		listeners, _ := strconv.ParseInt(t.Listeners, 10, 64)
		out = append(out, Track{
			Name:      t.Name,
			Artist:    t.Artist.Name,
			Listeners: listeners,
			Image:     mediumImage(t.Image),
		})
	}
	return out, nil
}

func mediumImage(images []lfmImage) string {
	for _, img := range images {
		if img.Size == "medium" {
			return img.URL
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}
