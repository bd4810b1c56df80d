package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"golang.org/x/time/rate"

	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/core/ports"
)

// DefaultTimeout bounds a single yt-dlp invocation.
const DefaultTimeout = 2 * time.Minute

// Provider implements ports.MetadataProvider using the local yt-dlp binary.
type Provider struct {
	binaryPath string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// Option customises a Provider.
type Option func(*Provider)

// WithBinary overrides the yt-dlp executable path.
func WithBinary(path string) Option {
	return func(p *Provider) {
		if path != "" {
			p.binaryPath = path
		}
	}
}

// WithTimeout sets the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRateLimit throttles invocations to rps per second. Zero disables it.
func WithRateLimit(rps float64) Option {
	return func(p *Provider) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			p.limiter = nil
		}
	}
}

// NewProvider creates a new yt-dlp backed provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		binaryPath: "yt-dlp", // Assumes yt-dlp is in PATH
		timeout:    DefaultTimeout,
	}
	// Check if yt-dlp.exe exists in current directory
	if _, err := os.Stat("yt-dlp.exe"); err == nil {
		p.binaryPath = ".\\yt-dlp.exe"
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Probe dumps metadata without resolving playlist entries or downloading.
func (p *Provider) Probe(ctx context.Context, url string) (*ports.VideoInfo, error) {
	return p.dump(ctx, url, "--flat-playlist")
}

// Resolve dumps full metadata. Collections are limited to their first entry.
func (p *Provider) Resolve(ctx context.Context, url string) (*ports.VideoInfo, error) {
	return p.dump(ctx, url, "--playlist-items", "1")
}

func (p *Provider) dump(ctx context.Context, url string, extra ...string) (*ports.VideoInfo, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, domain.ProviderError(fmt.Sprintf("rate limiter: %v", err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// --dump-single-json: one JSON document, playlists included
	// --skip-download: metadata only
	// --no-warnings: keep stderr limited to errors
	args := append([]string{"--dump-single-json", "--skip-download", "--no-warnings"}, extra...)
	args = append(args, "--", url)
	cmd := exec.CommandContext(ctx, p.binaryPath, args...)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, domain.ProviderError(fmt.Sprintf("yt-dlp: %v", ctxErr))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, classify(stderr.String())
		}
		return nil, domain.ProviderError(fmt.Sprintf("yt-dlp failed to start: %v", err))
	}

	return parseInfo(out.Bytes())
}

// parseInfo decodes yt-dlp's JSON output. Empty or null output means the URL
// did not resolve to anything.
func parseInfo(raw []byte) (*ports.VideoInfo, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var info ports.VideoInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, domain.ProviderError(fmt.Sprintf("decode yt-dlp output: %v", err))
	}
	return &info, nil
}
