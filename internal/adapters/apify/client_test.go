package apify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tennishighlights/internal/core/domain"
)

func newTestProvider(t *testing.T, dataset string, runStatus string, opts ...Option) *Provider {
	p, _ := newCountingProvider(t, dataset, runStatus, opts...)
	return p
}

// newCountingProvider also reports how many actor runs were started.
func newCountingProvider(t *testing.T, dataset string, runStatus string, opts ...Option) (*Provider, *atomic.Int32) {
	t.Helper()
	runs := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("/acts/"+youtubeMetadataActorID+"/runs", func(w http.ResponseWriter, r *http.Request) {
		runs.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"run-1"}}`))
	})
	mux.HandleFunc("/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"status":"` + runStatus + `","defaultDatasetId":"ds-1"}}`))
	})
	mux.HandleFunc("/datasets/ds-1/items", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(dataset))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p, err := NewProvider("test-token", opts...)
	require.NoError(t, err)
	p.baseURL = srv.URL
	p.pollInterval = time.Millisecond
	return p, runs
}

func TestNewProvider_RequiresToken(t *testing.T) {
	_, err := NewProvider("")
	assert.Error(t, err)
}

func TestResolve_SingleVideo(t *testing.T) {
	p := newTestProvider(t, `[{"id":"abc","title":"Match point","channelName":"Roland-Garros","duration":"00:03:21","viewCount":4200,"thumbnailUrl":"https://i.ytimg.com/abc.jpg"}]`, "SUCCEEDED")

	info, err := p.Probe(context.Background(), "https://www.youtube.com/watch?v=abc")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "abc", info.ID)
	assert.Equal(t, "Roland-Garros", *info.Uploader)
	assert.Equal(t, 201.0, *info.Duration)
	assert.Equal(t, int64(4200), *info.ViewCount)
	assert.False(t, info.IsCollection())
}

func TestResolve_MultipleItemsIsCollection(t *testing.T) {
	p := newTestProvider(t, `[{"id":"a","duration":10},{"id":"b","duration":20}]`, "SUCCEEDED")

	info, err := p.Resolve(context.Background(), "https://www.youtube.com/playlist?list=PL1")
	require.NoError(t, err)
	assert.True(t, info.IsCollection())
	require.Len(t, info.Entries, 2)
	assert.Equal(t, "a", info.Entries[0].ID)
}

func TestProbe_MultipleItemsSingleRun(t *testing.T) {
	p, runs := newCountingProvider(t, `[{"id":"a","duration":10},{"id":"b","duration":20}]`, "SUCCEEDED")

	info, err := p.Probe(context.Background(), "https://www.youtube.com/watch?v=a")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.False(t, info.IsCollection())
	assert.Equal(t, "a", info.ID)
	assert.Equal(t, int32(1), runs.Load())
}

func TestResolve_RunNeverFinishes(t *testing.T) {
	p := newTestProvider(t, `[]`, "RUNNING", WithTimeout(100*time.Millisecond))

	done := make(chan error, 1)
	go func() {
		_, err := p.Probe(context.Background(), "https://youtu.be/abc")
		done <- err
	}()

	select {
	case err := <-done:
		assert.True(t, domain.IsProviderError(err), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("actor run polling was not bounded by the timeout")
	}
}

func TestResolve_RateLimited(t *testing.T) {
	p := newTestProvider(t, `[{"id":"abc","duration":10}]`, "SUCCEEDED", WithRateLimit(0.001))
	ctx := context.Background()

	_, err := p.Resolve(ctx, "https://youtu.be/abc")
	require.NoError(t, err)

	// the single token is spent, the next run cannot start before the deadline
	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = p.Resolve(ctx, "https://youtu.be/abc")
	assert.True(t, domain.IsProviderError(err), "got %v", err)
}

func TestResolve_EmptyDataset(t *testing.T) {
	p := newTestProvider(t, `[]`, "SUCCEEDED")

	info, err := p.Resolve(context.Background(), "https://youtu.be/gone")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestResolve_RunFailed(t *testing.T) {
	p := newTestProvider(t, `[]`, "FAILED")

	_, err := p.Resolve(context.Background(), "https://youtu.be/abc")
	assert.True(t, domain.IsProviderError(err), "got %v", err)
}

func TestResolve_NonYouTubeURL(t *testing.T) {
	p, err := NewProvider("test-token")
	require.NoError(t, err)

	info, err := p.Resolve(context.Background(), "https://example.com/video")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{"1:02:03", 3723, true},
		{"03:21", 201, true},
		{"45", 45, true},
		{212.0, 212, true},
		{"live", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseDuration(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}
