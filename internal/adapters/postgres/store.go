package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tennishighlights/internal/core/domain"
)

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS highlights (
	id         BIGSERIAL PRIMARY KEY,
	video_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	channel    TEXT NOT NULL,
	duration   DOUBLE PRECISION NOT NULL CHECK (duration > 0),
	view_count BIGINT NOT NULL DEFAULT 0,
	thumbnail  TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_highlights_video_id ON highlights(video_id);

CREATE TABLE IF NOT EXISTS highlight_today (
	id         INT PRIMARY KEY CHECK (id = 0),
	video_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	channel    TEXT NOT NULL,
	duration   DOUBLE PRECISION NOT NULL CHECK (duration > 0),
	view_count BIGINT NOT NULL DEFAULT 0,
	thumbnail  TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Store implements ports.HighlightStore on PostgreSQL.
type Store struct {
	db DB
}

// Connect opens a pool for databaseURL and ensures the schema exists.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, *Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, s, nil
}

// New returns a Store over db. Call Migrate before first use.
func New(db DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tables if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return &domain.StoreError{Op: "init schema", Err: err}
	}
	return nil
}

// Insert appends h to the highlights table.
func (s *Store) Insert(ctx context.Context, h domain.Highlight) error {
	if err := domain.Validate(h); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO highlights (video_id, title, channel, duration, view_count, thumbnail) VALUES ($1, $2, $3, $4, $5, $6)`,
		h.VideoID, h.Title, h.Channel, h.Duration, h.ViewCount, h.Thumbnail)
	if err != nil {
		return &domain.StoreError{Op: "insert", Err: err}
	}
	return nil
}

// Delete removes every row with videoID.
func (s *Store) Delete(ctx context.Context, videoID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM highlights WHERE video_id = $1`, videoID); err != nil {
		return &domain.StoreError{Op: "delete", Err: err}
	}
	return nil
}

// GetAll returns the list projection of every highlight.
func (s *Store) GetAll(ctx context.Context) ([]domain.Highlight, error) {
	rows, err := s.db.Query(ctx, `SELECT video_id, channel, title, duration FROM highlights ORDER BY id`)
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
	err := s.db.QueryRow(ctx,
		`SELECT id, video_id, title, channel, duration, view_count, thumbnail FROM highlight_today WHERE id = $1`,
		domain.TodayPointerID).
		Scan(&t.ID, &h.VideoID, &h.Title, &h.Channel, &h.Duration, &h.ViewCount, &h.Thumbnail)
	if errors.Is(err, pgx.ErrNoRows) {
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
		_, err := s.db.Exec(ctx,
			`INSERT INTO highlight_today (id, video_id, title, channel, duration, view_count, thumbnail) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET video_id = EXCLUDED.video_id, title = EXCLUDED.title, channel = EXCLUDED.channel,
				duration = EXCLUDED.duration, view_count = EXCLUDED.view_count, thumbnail = EXCLUDED.thumbnail, updated_at = NOW()`,
			domain.TodayPointerID, h.VideoID, h.Title, h.Channel, h.Duration, h.ViewCount, h.Thumbnail)
		if err != nil {
			return &domain.StoreError{Op: "insert today", Err: err}
		}
		return nil
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE highlight_today SET video_id = $2, title = $3, channel = $4, duration = $5, view_count = $6, thumbnail = $7, updated_at = NOW() WHERE id = $1`,
		domain.TodayPointerID, h.VideoID, h.Title, h.Channel, h.Duration, h.ViewCount, h.Thumbnail)
	if err != nil {
		return &domain.StoreError{Op: "update today", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &domain.StoreError{Op: "update today", Err: domain.ErrTodayNotSet}
	}
	return nil
}
