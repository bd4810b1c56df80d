// Package storetest runs the ports.HighlightStore contract against an
// adapter.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/core/ports"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) ports.HighlightStore

// Highlight returns a valid highlight with the given id.
func Highlight(id string) domain.Highlight {
	return domain.Highlight{
		VideoID:   id,
		Title:     "Highlight " + id,
		Channel:   "Tennis TV",
		Duration:  245,
		ViewCount: 1000,
		Thumbnail: "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
	}
}

// Run executes the contract suite.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("InsertThenGetAll", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, Highlight("abc")))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "abc", all[0].VideoID)
		assert.Equal(t, "Highlight abc", all[0].Title)
		assert.Equal(t, "Tennis TV", all[0].Channel)
		assert.Equal(t, 245.0, all[0].Duration)
		// list projection
		assert.Zero(t, all[0].ViewCount)
		assert.Empty(t, all[0].Thumbnail)
	})

	t.Run("InsertRejectsInvalid", func(t *testing.T) {
		s := newStore(t)
		err := s.Insert(ctx, domain.Highlight{VideoID: "abc", Title: "T", Channel: "C", Duration: -5})
		assert.True(t, domain.IsValidation(err), "got %v", err)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("DuplicatesAllowed", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, Highlight("abc")))
		require.NoError(t, s.Insert(ctx, Highlight("abc")))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, Highlight("abc")))
		require.NoError(t, s.Insert(ctx, Highlight("abc")))
		require.NoError(t, s.Insert(ctx, Highlight("def")))

		require.NoError(t, s.Delete(ctx, "abc"))
		require.NoError(t, s.Delete(ctx, "abc"))
		require.NoError(t, s.Delete(ctx, "never-existed"))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "def", all[0].VideoID)
	})

	t.Run("TodayAbsent", func(t *testing.T) {
		s := newStore(t)
		today, err := s.GetToday(ctx)
		require.NoError(t, err)
		assert.Nil(t, today)
	})

	t.Run("TodayInsertThenUpdate", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.UpdateToday(ctx, Highlight("abc"), true))

		today, err := s.GetToday(ctx)
		require.NoError(t, err)
		require.NotNil(t, today)
		assert.Equal(t, domain.TodayPointerID, today.ID)
		assert.Equal(t, Highlight("abc"), today.Highlight)

		require.NoError(t, s.UpdateToday(ctx, Highlight("def"), false))
		today, err = s.GetToday(ctx)
		require.NoError(t, err)
		assert.Equal(t, "def", today.Highlight.VideoID)
	})

	t.Run("TodayInsertReplacesExisting", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.UpdateToday(ctx, Highlight("abc"), true))
		require.NoError(t, s.UpdateToday(ctx, Highlight("def"), true))

		today, err := s.GetToday(ctx)
		require.NoError(t, err)
		assert.Equal(t, "def", today.Highlight.VideoID)
	})

	t.Run("TodayUpdateWithoutRow", func(t *testing.T) {
		s := newStore(t)
		err := s.UpdateToday(ctx, Highlight("abc"), false)
		require.Error(t, err)
		assert.True(t, domain.IsStoreError(err))
		assert.ErrorIs(t, err, domain.ErrTodayNotSet)
	})

	t.Run("TodayRejectsInvalid", func(t *testing.T) {
		s := newStore(t)
		err := s.UpdateToday(ctx, domain.Highlight{VideoID: "abc"}, true)
		assert.True(t, domain.IsValidation(err), "got %v", err)

		today, err := s.GetToday(ctx)
		require.NoError(t, err)
		assert.Nil(t, today)
	})
}
