package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tennishighlights/internal/adapters/storetest"
	"tennishighlights/internal/core/domain"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, New(mock)
}

func TestMigrate(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS highlights")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
}

func TestInsert(t *testing.T) {
	mock, s := newMock(t)
	h := storetest.Highlight("abc")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO highlights (")).
		WithArgs(h.VideoID, h.Title, h.Channel, h.Duration, h.ViewCount, h.Thumbnail).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Insert(context.Background(), h))
}

func TestInsert_ValidationBeforeDatastore(t *testing.T) {
	_, s := newMock(t)

	err := s.Insert(context.Background(), domain.Highlight{VideoID: "abc", Title: "T", Channel: "C", Duration: -5})
	assert.True(t, domain.IsValidation(err))
}

func TestInsert_DatabaseError(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO highlights (")).
		WillReturnError(errors.New("connection reset"))

	err := s.Insert(context.Background(), storetest.Highlight("abc"))
	assert.True(t, domain.IsStoreError(err))
}

func TestDelete(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM highlights WHERE video_id = $1")).
		WithArgs("abc").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.Delete(context.Background(), "abc"))
}

func TestGetAll(t *testing.T) {
	mock, s := newMock(t)
	rows := pgxmock.NewRows([]string{"video_id", "channel", "title", "duration"}).
		AddRow("abc", "Tennis TV", "Final", 245.0).
		AddRow("def", "ATP Tour", "Semi", 130.5)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT video_id, channel, title, duration FROM highlights")).
		WillReturnRows(rows)

	all, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Highlight{
		{VideoID: "abc", Channel: "Tennis TV", Title: "Final", Duration: 245},
		{VideoID: "def", Channel: "ATP Tour", Title: "Semi", Duration: 130.5},
	}, all)
}

func TestGetToday_Absent(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM highlight_today WHERE id = $1")).
		WithArgs(domain.TodayPointerID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "video_id", "title", "channel", "duration", "view_count", "thumbnail"}))

	today, err := s.GetToday(context.Background())
	require.NoError(t, err)
	assert.Nil(t, today)
}

func TestGetToday(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM highlight_today WHERE id = $1")).
		WithArgs(domain.TodayPointerID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "video_id", "title", "channel", "duration", "view_count", "thumbnail"}).
			AddRow(0, "abc", "Final", "Tennis TV", 245.0, int64(1000), ""))

	today, err := s.GetToday(context.Background())
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, "abc", today.Highlight.VideoID)
	assert.Equal(t, int64(1000), today.Highlight.ViewCount)
}

func TestUpdateToday_Insert(t *testing.T) {
	mock, s := newMock(t)
	h := storetest.Highlight("abc")
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")).
		WithArgs(domain.TodayPointerID, h.VideoID, h.Title, h.Channel, h.Duration, h.ViewCount, h.Thumbnail).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.UpdateToday(context.Background(), h, true))
}

func TestUpdateToday_InPlace(t *testing.T) {
	mock, s := newMock(t)
	h := storetest.Highlight("abc")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE highlight_today SET")).
		WithArgs(domain.TodayPointerID, h.VideoID, h.Title, h.Channel, h.Duration, h.ViewCount, h.Thumbnail).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateToday(context.Background(), h, false))
}

func TestUpdateToday_NoRow(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE highlight_today SET")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateToday(context.Background(), storetest.Highlight("abc"), false)
	assert.ErrorIs(t, err, domain.ErrTodayNotSet)
	assert.True(t, domain.IsStoreError(err))
}
