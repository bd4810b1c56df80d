package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// Validate checks the required-field contract shared by every write path:
// video_id, title and channel are non-empty and duration is a positive,
// finite number of seconds.
func Validate(h Highlight) error {
	switch {
	case strings.TrimSpace(h.VideoID) == "":
		return &ValidationError{Field: "video_id", Reason: "is required"}
	case h.Title == "":
		return &ValidationError{Field: "title", Reason: "is required"}
	case h.Channel == "":
		return &ValidationError{Field: "channel", Reason: "is required"}
	case math.IsNaN(h.Duration) || math.IsInf(h.Duration, 0):
		return &ValidationError{Field: "duration", Reason: "must be a finite number"}
	case h.Duration <= 0:
		return &ValidationError{Field: "duration", Reason: "must be a positive number"}
	}
	return nil
}

type highlightPayload struct {
	VideoID   *string  `json:"video_id"`
	Title     *string  `json:"title"`
	Channel   *string  `json:"channel"`
	Duration  *float64 `json:"duration"`
	ViewCount *float64 `json:"view_count"`
	Thumbnail *string  `json:"thumbnail"`
}

// ParseHighlight decodes a client-supplied JSON object into a Highlight.
// Missing required fields (video_id, title, duration) and wrongly typed
// values are rejected; a missing channel defaults to DefaultChannel.
// The result has passed Validate.
func ParseHighlight(raw []byte) (Highlight, error) {
	var p highlightPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field == "" {
				return Highlight{}, &ValidationError{Field: "body", Reason: "must be a JSON object"}
			}
			return Highlight{}, &ValidationError{Field: typeErr.Field, Reason: "has the wrong type"}
		}
		return Highlight{}, &ValidationError{Field: "body", Reason: "is not valid JSON"}
	}

	if p.VideoID == nil || p.Title == nil || p.Duration == nil {
		return Highlight{}, &ValidationError{
			Field:  "video_id, title, duration",
			Reason: "are required",
		}
	}

	h := Highlight{
		VideoID:  *p.VideoID,
		Title:    *p.Title,
		Channel:  DefaultChannel,
		Duration: *p.Duration,
	}
	if p.Channel != nil && *p.Channel != "" {
		h.Channel = *p.Channel
	}
	if p.ViewCount != nil && *p.ViewCount > 0 {
		h.ViewCount = int64(*p.ViewCount)
	}
	if p.Thumbnail != nil {
		h.Thumbnail = *p.Thumbnail
	}

	if err := Validate(h); err != nil {
		return Highlight{}, err
	}
	return h, nil
}
