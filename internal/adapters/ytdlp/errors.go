package ytdlp

import (
	"strings"

	"tennishighlights/internal/core/domain"
)

// classify maps a yt-dlp error message onto the extraction error taxonomy.
func classify(stderr string) error {
	msg := lastErrorLine(stderr)
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "http error 5"):
		// transient upstream failure, e.g. "HTTP Error 503: Service Unavailable"
		return domain.ProviderError(msg)
	case strings.Contains(lower, "private video"):
		return domain.Unsupported(domain.ReasonUnavailable, "Private video - cannot access")
	case strings.Contains(lower, "age restricted"),
		strings.Contains(lower, "age-restricted"),
		strings.Contains(lower, "confirm your age"):
		return domain.Unsupported(domain.ReasonAgeRestricted, "Age-restricted content not supported")
	case strings.Contains(lower, "unavailable"):
		return domain.Unsupported(domain.ReasonUnavailable, "Video unavailable")
	case strings.Contains(lower, "unsupported url"),
		strings.Contains(lower, "is not a valid url"):
		return domain.NotFound("URL not recognized as a video")
	}

	if msg == "" {
		msg = "yt-dlp exited with an error"
	}
	return domain.ProviderError(msg)
}

// lastErrorLine picks the most relevant line from yt-dlp's stderr.
func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
