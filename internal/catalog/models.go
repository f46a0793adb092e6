package catalog

// Track is a candidate track returned by the external catalog.
type Track struct {
	Name            string `json:"name"`
	Artist          string `json:"artist"`
	Listeners       int64  `json:"listeners"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Image           string `json:"image"`
}

// Applied when the catalog has no duration for a track.
const defaultDurationSeconds = 180
