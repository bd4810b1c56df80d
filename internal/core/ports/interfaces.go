package ports

import (
	"context"

	"tennishighlights/internal/core/domain"
)

// VideoInfo is the subset of provider metadata the extractor inspects.
// Pointer fields distinguish "absent" from zero values.
type VideoInfo struct {
	ID           string      `json:"id"`
	Type         string      `json:"_type"` // "playlist" for collections
	Title        *string     `json:"title"`
	Uploader     *string     `json:"uploader"`
	Channel      *string     `json:"channel"`
	Duration     *float64    `json:"duration"`
	ViewCount    *int64      `json:"view_count"`
	Thumbnail    *string     `json:"thumbnail"`
	IsLive       bool        `json:"is_live"`
	AgeLimit     int         `json:"age_limit"`
	Availability string      `json:"availability"`
	Entries      []VideoInfo `json:"entries"`
}

// IsCollection reports whether the info describes a playlist-like result.
func (v *VideoInfo) IsCollection() bool {
	return v.Type == "playlist" || v.Entries != nil
}

// MetadataProvider resolves a URL into video metadata.
type MetadataProvider interface {
	// Probe performs a cheap, non-downloading lookup. It returns nil, nil
	// when the URL is not recognized as a video.
	Probe(ctx context.Context, url string) (*VideoInfo, error)

	// Resolve performs a full resolution of the URL, expanding collections
	// into their entries.
	Resolve(ctx context.Context, url string) (*VideoInfo, error)
}

// HighlightStore persists highlights and the today pointer.
// Failures are reported as *domain.StoreError; invalid records as
// *domain.ValidationError before the datastore is touched.
type HighlightStore interface {
	// Insert appends a highlight. Duplicate video ids are permitted.
	Insert(ctx context.Context, h domain.Highlight) error

	// Delete removes every highlight with videoID. Deleting a missing id is
	// not an error.
	Delete(ctx context.Context, videoID string) error

	// GetAll returns every highlight projected to video_id, channel, title
	// and duration.
	GetAll(ctx context.Context) ([]domain.Highlight, error)

	// GetToday returns the singleton today pointer, or nil if none is set.
	GetToday(ctx context.Context) (*domain.TodayPointer, error)

	// UpdateToday writes the today pointer. isInsert creates or replaces the
	// singleton; otherwise the existing row is updated in place.
	UpdateToday(ctx context.Context, h domain.Highlight, isInsert bool) error
}
