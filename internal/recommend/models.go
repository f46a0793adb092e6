package recommend

import "time"

const (
	statusPending  = "pending"
	statusAccepted = "accepted"
	statusRejected = "rejected"

	kindSong     = "song"
	kindPlaylist = "playlist"
)

// SongRecommendation is an inbound song recommendation joined with song
// and sender data.
type SongRecommendation struct {
	RecommendationID int64     `json:"recommendationId"`
	Title            string    `json:"title"`
	Artist           string    `json:"artist"`
	RecommenderName  string    `json:"recommenderName"`
	Reason           string    `json:"reason"`
	Date             time.Time `json:"recommendationDate"`
}

// PlaylistRecommendation is an inbound pending playlist recommendation
// joined with playlist and sender data.
type PlaylistRecommendation struct {
	RecommendationID int64     `json:"recommendationId"`
	PlaylistID       int64     `json:"playlistId"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	RecommenderName  string    `json:"recommenderName"`
	Reason           string    `json:"reason"`
	Date             time.Time `json:"recommendationDate"`
}

// TopSong is a row of the most-recommended songs ranking.
type TopSong struct {
	Title               string `json:"title"`
	Artist              string `json:"artist"`
	RecommendationCount int64  `json:"recommendationCount"`
}
