package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/core/ports"
)

const (
	defaultBaseURL = "https://api.apify.com/v2"
	// streamers/youtube-scraper
	youtubeMetadataActorID = "h7sDV53CddomktSi5"
)

// Provider implements ports.MetadataProvider using the Apify REST API.
type Provider struct {
	apiToken     string
	baseURL      string
	pollInterval time.Duration
	timeout      time.Duration
	limiter      *rate.Limiter
	client       *http.Client
}

// Option customises a Provider.
type Option func(*Provider)

// WithTimeout bounds a whole actor run, polling included.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRateLimit throttles actor runs to rps per second. Zero disables it.
func WithRateLimit(rps float64) Option {
	return func(p *Provider) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			p.limiter = nil
		}
	}
}

// NewProvider creates a new Provider for the given API token.
func NewProvider(token string, opts ...Option) (*Provider, error) {
	if token == "" {
		return nil, fmt.Errorf("APIFY_API_TOKEN is not set")
	}
	p := &Provider{
		apiToken:     token,
		baseURL:      defaultBaseURL,
		pollInterval: 3 * time.Second,
		timeout:      5 * time.Minute,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Probe runs the metadata actor for the URL. The actor is capped at one
// result, so a multi-item dataset is answered with its first entry instead
// of a collection that would trigger a second run.
func (p *Provider) Probe(ctx context.Context, videoPageURL string) (*ports.VideoInfo, error) {
	info, err := p.Resolve(ctx, videoPageURL)
	if err != nil || info == nil || !info.IsCollection() {
		return info, err
	}
	if len(info.Entries) == 0 {
		return nil, nil
	}
	first := info.Entries[0]
	return &first, nil
}

// Resolve runs the metadata actor and converts its dataset into VideoInfo.
// More than one dataset item is reported as a collection.
func (p *Provider) Resolve(ctx context.Context, videoPageURL string) (*ports.VideoInfo, error) {
	if !isYouTube(videoPageURL) {
		return nil, nil
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, domain.ProviderError(fmt.Sprintf("rate limiter: %v", err))
		}
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	runID, err := p.startActorRun(ctx, youtubeMetadataActorID, videoPageURL)
	if err != nil {
		return nil, domain.ProviderError(fmt.Sprintf("failed to start actor run: %v", err))
	}

	rawData, err := p.waitAndGetResults(ctx, runID)
	if err != nil {
		return nil, domain.ProviderError(fmt.Sprintf("failed to get results: %v", err))
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(rawData, &items); err != nil {
		return nil, domain.ProviderError(fmt.Sprintf("decode dataset: %v", err))
	}

	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		info := toVideoInfo(items[0])
		return &info, nil
	}

	collection := &ports.VideoInfo{Type: "playlist", Entries: make([]ports.VideoInfo, 0, len(items))}
	for _, item := range items {
		collection.Entries = append(collection.Entries, toVideoInfo(item))
	}
	return collection, nil
}

func (p *Provider) startActorRun(ctx context.Context, actorID, videoURL string) (string, error) {
	url := fmt.Sprintf("%s/acts/%s/runs?token=%s", p.baseURL, actorID, p.apiToken)

	input := map[string]interface{}{
		"startUrls":  []map[string]string{{"url": videoURL}},
		"maxResults": 1,
	}
	body, _ := json.Marshal(input)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Data.ID, nil
}

func (p *Provider) waitAndGetResults(ctx context.Context, runID string) ([]byte, error) {
	statusURL := fmt.Sprintf("%s/actor-runs/%s?token=%s", p.baseURL, runID, p.apiToken)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}

		var status struct {
			Data struct {
				Status           string `json:"status"`
				DefaultDatasetID string `json:"defaultDatasetId"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			resp.Body.Close()
			return nil, err
		}
		resp.Body.Close()

		switch status.Data.Status {
		case "SUCCEEDED":
			return p.getDatasetItems(ctx, status.Data.DefaultDatasetID)
		case "FAILED", "ABORTED", "TIMED-OUT":
			return nil, fmt.Errorf("actor run failed with status: %s", status.Data.Status)
		}
		// Still running, continue polling
	}
}

func (p *Provider) getDatasetItems(ctx context.Context, datasetID string) ([]byte, error) {
	url := fmt.Sprintf("%s/datasets/%s/items?token=%s", p.baseURL, datasetID, p.apiToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// toVideoInfo maps a youtube-scraper dataset item onto VideoInfo.
func toVideoInfo(item map[string]interface{}) ports.VideoInfo {
	var info ports.VideoInfo
	info.ID, _ = item["id"].(string)

	if v, ok := item["title"].(string); ok {
		info.Title = &v
	}
	for _, field := range []string{"channelName", "uploader"} {
		if v, ok := item[field].(string); ok && v != "" {
			info.Uploader = &v
			break
		}
	}
	for _, field := range []string{"thumbnailUrl", "thumbnail"} {
		if v, ok := item[field].(string); ok && v != "" {
			info.Thumbnail = &v
			break
		}
	}
	if v, ok := item["viewCount"].(float64); ok {
		n := int64(v)
		info.ViewCount = &n
	}
	if d, ok := parseDuration(item["duration"]); ok {
		info.Duration = &d
	}
	info.IsLive, _ = item["isLive"].(bool)
	if v, ok := item["isAgeRestricted"].(bool); ok && v {
		info.AgeLimit = 18
	}
	if v, ok := item["isMembersOnly"].(bool); ok && v {
		info.Availability = "subscriber_only"
	}
	return info
}

// parseDuration accepts seconds as a number or an "HH:MM:SS"/"MM:SS" string.
func parseDuration(v interface{}) (float64, bool) {
	switch d := v.(type) {
	case float64:
		return d, true
	case string:
		parts := strings.Split(strings.TrimSpace(d), ":")
		if len(parts) == 0 || len(parts) > 3 {
			return 0, false
		}
		total := 0
		for _, part := range parts {
			n, err := strconv.Atoi(part)
			if err != nil {
				return 0, false
			}
			total = total*60 + n
		}
		return float64(total), true
	}
	return 0, false
}

func isYouTube(url string) bool {
	lowerURL := strings.ToLower(url)
	return strings.Contains(lowerURL, "youtube.com") || strings.Contains(lowerURL, "youtu.be")
}
