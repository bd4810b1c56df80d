package service

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/core/ports"
	"tennishighlights/internal/metrics"
)

// Catalog coordinates extraction, persistence and daily selection.
type Catalog struct {
	extractor *Extractor
	store     ports.HighlightStore
	selector  *Selector
	metrics   *metrics.Metrics
	logger    *log.Logger
}

// NewCatalog creates a new Catalog. m may be nil.
func NewCatalog(
	extractor *Extractor,
	store ports.HighlightStore,
	selector *Selector,
	m *metrics.Metrics,
	logger *log.Logger,
) *Catalog {
	return &Catalog{
		extractor: extractor,
		store:     store,
		selector:  selector,
		metrics:   m,
		logger:    logger,
	}
}

// Lookup extracts metadata for url without persisting anything.
func (c *Catalog) Lookup(ctx context.Context, videoURL string) (domain.Highlight, error) {
	h, err := c.extractor.Extract(ctx, videoURL)
	c.metrics.ObserveExtraction(err)
	return h, err
}

// AddFromURL extracts metadata for url and stores the resulting highlight.
func (c *Catalog) AddFromURL(ctx context.Context, videoURL string) (domain.Highlight, error) {
	jobID := uuid.New().String()
	c.logger.Printf("[JOB %s] Adding highlight from URL: %s", jobID, videoURL)

	h, err := c.Lookup(ctx, videoURL)
	if err != nil {
		c.logger.Printf("[JOB %s] ERROR: %v", jobID, err)
		return domain.Highlight{}, err
	}
	if err := c.add(ctx, jobID, h); err != nil {
		return domain.Highlight{}, err
	}
	return h, nil
}

// Add stores an already-populated highlight.
func (c *Catalog) Add(ctx context.Context, h domain.Highlight) error {
	return c.add(ctx, uuid.New().String(), h)
}

func (c *Catalog) add(ctx context.Context, jobID string, h domain.Highlight) error {
	err := c.store.Insert(ctx, h)
	c.metrics.ObserveStore("insert", err)
	if err != nil {
		c.logger.Printf("[JOB %s] ERROR: insert %s: %v", jobID, h.VideoID, err)
		return err
	}
	c.logger.Printf("[JOB %s] Added highlight: %s", jobID, h.VideoID)
	return nil
}

// Delete removes every highlight with videoID.
func (c *Catalog) Delete(ctx context.Context, videoID string) error {
	err := c.store.Delete(ctx, videoID)
	c.metrics.ObserveStore("delete", err)
	if err != nil {
		c.logger.Printf("ERROR: delete %s: %v", videoID, err)
		return err
	}
	c.logger.Printf("Deleted highlight: %s", videoID)
	return nil
}

// List returns every stored highlight.
func (c *Catalog) List(ctx context.Context) ([]domain.Highlight, error) {
	all, err := c.store.GetAll(ctx)
	c.metrics.ObserveStore("get_all", err)
	return all, err
}

// Today returns the featured highlight, bootstrapping the pointer if needed.
// It returns domain.ErrNoHighlights when the collection is empty.
func (c *Catalog) Today(ctx context.Context) (domain.Highlight, error) {
	all, err := c.List(ctx)
	if err != nil {
		return domain.Highlight{}, err
	}
	if len(all) == 0 {
		return domain.Highlight{}, domain.ErrNoHighlights
	}
	h, err := c.selector.Current(ctx, all)
	c.metrics.ObserveStore("today", err)
	return h, err
}

// ChooseAnother rotates the featured highlight.
func (c *Catalog) ChooseAnother(ctx context.Context) (domain.Highlight, error) {
	all, err := c.List(ctx)
	if err != nil {
		return domain.Highlight{}, err
	}
	if len(all) == 0 {
		return domain.Highlight{}, domain.ErrNoHighlights
	}
	current, err := c.selector.Current(ctx, all)
	if err != nil {
		return domain.Highlight{}, err
	}
	h, err := c.selector.Rotate(ctx, all, current)
	c.metrics.ObserveStore("rotate", err)
	if err == nil {
		c.metrics.ObserveRotation()
	}
	return h, err
}

// VideoIDFromURL extracts the platform id from a watch or short URL. A bare
// id is returned unchanged.
func VideoIDFromURL(videoURL string) string {
	if !strings.Contains(videoURL, "/") {
		return videoURL
	}
	u, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}
	if u.Host == "youtu.be" {
		return strings.TrimPrefix(u.Path, "/")
	}
	if id := u.Query().Get("v"); id != "" {
		return id
	}
	if strings.HasPrefix(u.Path, "/shorts/") {
		return strings.TrimPrefix(u.Path, "/shorts/")
	}
	return ""
}

// WatchURL builds a short share URL for videoID.
func WatchURL(videoID string) string {
	return "https://youtu.be/" + videoID
}
