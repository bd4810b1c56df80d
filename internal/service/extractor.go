package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/core/ports"
)

// Extractor turns a URL into a validated highlight using a MetadataProvider.
type Extractor struct {
	provider    ports.MetadataProvider
	maxDuration float64
	logger      *log.Logger
}

// NewExtractor creates a new Extractor. A non-positive maxDuration falls back
// to domain.MaxDuration.
func NewExtractor(provider ports.MetadataProvider, maxDuration float64, logger *log.Logger) *Extractor {
	if maxDuration <= 0 {
		maxDuration = domain.MaxDuration
	}
	return &Extractor{provider: provider, maxDuration: maxDuration, logger: logger}
}

// Extract resolves url to a single video and returns it as a Highlight.
// Failures are always *domain.ExtractionError.
func (e *Extractor) Extract(ctx context.Context, url string) (domain.Highlight, error) {
	info, err := e.provider.Probe(ctx, url)
	if err != nil {
		return domain.Highlight{}, e.fail(url, err)
	}
	if info == nil {
		return domain.Highlight{}, e.fail(url, domain.NotFound("URL not recognized as a video"))
	}

	video := info
	if info.IsCollection() {
		e.logger.Printf("[EXTRACT] %s resolved to a collection, resolving first entry", url)
		full, err := e.provider.Resolve(ctx, url)
		if err != nil {
			return domain.Highlight{}, e.fail(url, err)
		}
		video = firstEntry(full)
	}
	if video == nil {
		return domain.Highlight{}, e.fail(url, domain.NotFound("No video found at URL"))
	}

	h, err := e.toHighlight(video)
	if err != nil {
		return domain.Highlight{}, e.fail(url, err)
	}
	e.logger.Printf("[EXTRACT] %s -> %s (%s, %.0fs)", url, h.VideoID, h.Title, h.Duration)
	return h, nil
}

func (e *Extractor) toHighlight(v *ports.VideoInfo) (domain.Highlight, error) {
	if v.IsLive {
		return domain.Highlight{}, domain.Unsupported(domain.ReasonLive, "Live streams not supported")
	}
	if v.AgeLimit > 0 {
		return domain.Highlight{}, domain.Unsupported(domain.ReasonAgeRestricted, "Age-restricted content not supported")
	}
	switch v.Availability {
	case "private":
		return domain.Highlight{}, domain.Unsupported(domain.ReasonUnavailable, "Private video - cannot access")
	case "needs_auth", "premium_only", "subscriber_only", "unavailable":
		return domain.Highlight{}, domain.Unsupported(domain.ReasonUnavailable, "Video unavailable")
	}

	var duration float64
	if v.Duration != nil {
		duration = *v.Duration
	}
	if duration > e.maxDuration {
		return domain.Highlight{}, domain.Unsupported(domain.ReasonTooLong,
			fmt.Sprintf("Videos longer than %.0f seconds not supported", e.maxDuration))
	}
	if v.ID == "" {
		return domain.Highlight{}, domain.NotFound("No video id in provider response")
	}

	h := domain.Highlight{
		VideoID:  v.ID,
		Title:    domain.DefaultTitle,
		Channel:  domain.DefaultChannel,
		Duration: duration,
	}
	if v.Title != nil && *v.Title != "" {
		h.Title = *v.Title
	}
	switch {
	case v.Uploader != nil && *v.Uploader != "":
		h.Channel = *v.Uploader
	case v.Channel != nil && *v.Channel != "":
		h.Channel = *v.Channel
	}
	if v.ViewCount != nil {
		h.ViewCount = *v.ViewCount
	}
	if v.Thumbnail != nil {
		h.Thumbnail = *v.Thumbnail
	}
	return h, nil
}

// fail logs err and normalizes it to an *domain.ExtractionError.
func (e *Extractor) fail(url string, err error) error {
	var extErr *domain.ExtractionError
	if !errors.As(err, &extErr) {
		extErr = domain.ProviderError(err.Error())
	}
	e.logger.Printf("[EXTRACT] %s failed: %v", url, extErr)
	return extErr
}

func firstEntry(info *ports.VideoInfo) *ports.VideoInfo {
	if info == nil {
		return nil
	}
	if !info.IsCollection() {
		return info
	}
	if len(info.Entries) == 0 {
		return nil
	}
	return &info.Entries[0]
}
