package domain

// Highlight is a single cataloged video.
type Highlight struct {
	VideoID   string  `json:"video_id"`
	Title     string  `json:"title"`
	Channel   string  `json:"channel"`
	Duration  float64 `json:"duration"` // seconds
	ViewCount int64   `json:"view_count"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// TodayPointerID is the fixed key of the singleton today row.
const TodayPointerID = 0

// TodayPointer is the currently featured highlight.
type TodayPointer struct {
	ID        int `json:"id"`
	Highlight Highlight
}

// Defaults applied when the provider omits a field.
const (
	DefaultTitle   = "No Title"
	DefaultChannel = "Unknown Channel"
)

// MaxDuration is the default ceiling, in seconds, for extracted videos.
const MaxDuration = 3600

// Contains reports whether a highlight with videoID is present in hs.
func Contains(hs []Highlight, videoID string) bool {
	for _, h := range hs {
		if h.VideoID == videoID {
			return true
		}
	}
	return false
}
