package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tennishighlights/internal/adapters/localstorage"
	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/core/ports"
	"tennishighlights/internal/service"
)

type stubProvider struct{ info *ports.VideoInfo }

func (p stubProvider) Probe(context.Context, string) (*ports.VideoInfo, error)   { return p.info, nil }
func (p stubProvider) Resolve(context.Context, string) (*ports.VideoInfo, error) { return p.info, nil }

func newCatalog(t *testing.T, info *ports.VideoInfo) *service.Catalog {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	store, err := localstorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewCatalog(
		service.NewExtractor(stubProvider{info: info}, 0, logger),
		store,
		service.NewSelector(store, logger),
		nil,
		logger,
	)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:59", formatDuration(59))
	assert.Equal(t, "03:21", formatDuration(201))
	assert.Equal(t, "01:02:03", formatDuration(3723))
}

func TestRun_AddListTodayDelete(t *testing.T) {
	title, duration := "Match point", 201.0
	c := newCatalog(t, &ports.VideoInfo{ID: "abc", Title: &title, Duration: &duration})
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, c, "add", []string{"-url", "https://youtu.be/abc"}, &out))
	assert.Contains(t, out.String(), "Highlight added successfully!")

	out.Reset()
	require.NoError(t, run(ctx, c, "list", nil, &out))
	assert.Contains(t, out.String(), "Match point")
	assert.Contains(t, out.String(), "03:21")

	out.Reset()
	require.NoError(t, run(ctx, c, "today", nil, &out))
	assert.Contains(t, out.String(), "https://youtu.be/abc")

	out.Reset()
	require.NoError(t, run(ctx, c, "delete", []string{"-id", "https://youtu.be/abc"}, &out))

	out.Reset()
	require.NoError(t, run(ctx, c, "list", nil, &out))
	assert.Contains(t, out.String(), "No Highlights in Database!")

	err := run(ctx, c, "today", nil, &out)
	assert.ErrorIs(t, err, domain.ErrNoHighlights)
	assert.Equal(t, "No Highlights in Database!", userMessage(err))
}

func TestRun_Errors(t *testing.T) {
	c := newCatalog(t, &ports.VideoInfo{ID: "abc", IsLive: true})
	ctx := context.Background()
	var out bytes.Buffer

	assert.Error(t, run(ctx, c, "add", nil, &out))
	assert.Error(t, run(ctx, c, "bogus", nil, &out))

	err := run(ctx, c, "info", []string{"-url", "https://youtu.be/abc"}, &out)
	require.Error(t, err)
	assert.Equal(t, "Live streams not supported", userMessage(err))
}
