package sqlitestore

import (
	"context"
	"database/sql"
	"errors"

	"tennishighlights/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS highlights (
	video_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	channel    TEXT NOT NULL,
	duration   REAL NOT NULL CHECK (duration > 0),
	view_count INTEGER NOT NULL DEFAULT 0,
	thumbnail  TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL DEFAULT (unixepoch())
);
CREATE INDEX IF NOT EXISTS idx_highlights_video_id ON highlights(video_id);

CREATE TABLE IF NOT EXISTS highlight_today (
	id         INTEGER PRIMARY KEY CHECK (id = 0),
	video_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	channel    TEXT NOT NULL,
	duration   REAL NOT NULL CHECK (duration > 0),
	view_count INTEGER NOT NULL DEFAULT 0,
	thumbnail  TEXT NOT NULL DEFAULT '',
	updated_at INTEGER NOT NULL DEFAULT (unixepoch())
);
`

// Store implements ports.HighlightStore on SQLite.
type Store struct {
	db *sql.DB
}

// New creates the tables if needed and returns a Store over db.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, &domain.StoreError{Op: "init schema", Err: err}
	}
	return &Store{db: db}, nil
}

// Insert appends h to the highlights table.
func (s *Store) Insert(ctx context.Context, h domain.Highlight) error {
	if err := domain.Validate(h); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO highlights (video_id, title, channel, duration, view_count, thumbnail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		h.VideoID, h.Title, h.Channel, h.Duration, h.ViewCount, h.Thumbnail)
	if err != nil {
		return &domain.StoreError{Op: "insert", Err: err}
	}
	return nil
}

// Delete removes every row with videoID.
func (s *Store) Delete(ctx context.Context, videoID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM highlights WHERE video_id = ?`, videoID); err != nil {
		return &domain.StoreError{Op: "delete", Err: err}
	}
	return nil
}

// GetAll returns the list projection of every highlight.
func (s *Store) GetAll(ctx context.Context) ([]domain.Highlight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id, channel, title, duration FROM highlights ORDER BY rowid`)
	if err != nil {
		return nil, &domain.StoreError{Op: "query", Err: err}
	}
	defer rows.Close()

	var out []domain.Highlight
	for rows.Next() {
		var h domain.Highlight
		if err := rows.Scan(&h.VideoID, &h.Channel, &h.Title, &h.Duration); err != nil {
			return nil, &domain.StoreError{Op: "query", Err: err}
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "query", Err: err}
	}
	return out, nil
}

// GetToday returns the singleton today row, or nil if it does not exist.
func (s *Store) GetToday(ctx context.Context) (*domain.TodayPointer, error) {
	var t domain.TodayPointer
	h := &t.Highlight
	err := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, title, channel, duration, view_count, thumbnail
		 FROM highlight_today WHERE id = ?`, domain.TodayPointerID).
		Scan(&t.ID, &h.VideoID, &h.Title, &h.Channel, &h.Duration, &h.ViewCount, &h.Thumbnail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "query today", Err: err}
	}
	return &t, nil
}

// UpdateToday writes the singleton today row. isInsert upserts it; otherwise
// the existing row is updated and ErrTodayNotSet is reported if none exists.
func (s *Store) UpdateToday(ctx context.Context, h domain.Highlight, isInsert bool) error {
	if err := domain.Validate(h); err != nil {
		return err
	}

	if isInsert {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO highlight_today (id, video_id, title, channel, duration, view_count, thumbnail)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				video_id = excluded.video_id,
				title = excluded.title,
				channel = excluded.channel,
				duration = excluded.duration,
				view_count = excluded.view_count,
				thumbnail = excluded.thumbnail,
				updated_at = unixepoch()`,
			domain.TodayPointerID, h.VideoID, h.Title, h.Channel, h.Duration, h.ViewCount, h.Thumbnail)
		if err != nil {
			return &domain.StoreError{Op: "insert today", Err: err}
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE highlight_today SET
			video_id = ?, title = ?, channel = ?, duration = ?, view_count = ?, thumbnail = ?,
			updated_at = unixepoch()
		 WHERE id = ?`,
		h.VideoID, h.Title, h.Channel, h.Duration, h.ViewCount, h.Thumbnail, domain.TodayPointerID)
	if err != nil {
		return &domain.StoreError{Op: "update today", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &domain.StoreError{Op: "update today", Err: err}
	}
	if n == 0 {
		return &domain.StoreError{Op: "update today", Err: domain.ErrTodayNotSet}
	}
	return nil
}
