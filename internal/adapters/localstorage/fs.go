package localstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"tennishighlights/internal/core/domain"
)

const (
	highlightsDir = "highlights"
	todayDir      = "highlight_today"
)

// LocalStorage implements ports.HighlightStore as JSON documents on the
// local filesystem: one file per highlight, named by a time-ordered UUID,
// and a single today document keyed by the pointer id.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates the collection directories under baseDir.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	s := &LocalStorage{BaseDir: baseDir}
	for _, dir := range []string{highlightsDir, todayDir} {
		path := filepath.Join(baseDir, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, &domain.StoreError{Op: "init", Err: fmt.Errorf("failed to create directory %s: %w", path, err)}
		}
	}
	return s, nil
}

// Insert writes h as a new document.
func (s *LocalStorage) Insert(ctx context.Context, h domain.Highlight) error {
	if err := domain.Validate(h); err != nil {
		return err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return &domain.StoreError{Op: "insert", Err: err}
	}
	path := filepath.Join(s.BaseDir, highlightsDir, id.String()+".json")
	if err := writeJSON(path, h); err != nil {
		return &domain.StoreError{Op: "insert", Err: err}
	}
	return nil
}

// Delete removes every document whose video id matches.
func (s *LocalStorage) Delete(ctx context.Context, videoID string) error {
	docs, err := s.scan(ctx)
	if err != nil {
		return &domain.StoreError{Op: "delete", Err: err}
	}
	for _, d := range docs {
		if d.highlight.VideoID != videoID {
			continue
		}
		if err := os.Remove(d.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &domain.StoreError{Op: "delete", Err: fmt.Errorf("failed to remove %s: %w", d.path, err)}
		}
	}
	return nil
}

// GetAll returns the list projection of every document in insertion order.
func (s *LocalStorage) GetAll(ctx context.Context) ([]domain.Highlight, error) {
	docs, err := s.scan(ctx)
	if err != nil {
		return nil, &domain.StoreError{Op: "query", Err: err}
	}
	out := make([]domain.Highlight, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Highlight{
			VideoID:  d.highlight.VideoID,
			Channel:  d.highlight.Channel,
			Title:    d.highlight.Title,
			Duration: d.highlight.Duration,
		})
	}
	return out, nil
}

type todayDocument struct {
	ID int `json:"id"`
	domain.Highlight
}

// GetToday reads the today document, or returns nil if it does not exist.
func (s *LocalStorage) GetToday(ctx context.Context) (*domain.TodayPointer, error) {
	data, err := os.ReadFile(s.todayPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "query today", Err: err}
	}
	var doc todayDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &domain.StoreError{Op: "query today", Err: fmt.Errorf("corrupt today document: %w", err)}
	}
	return &domain.TodayPointer{ID: doc.ID, Highlight: doc.Highlight}, nil
}

// UpdateToday replaces the today document. Without isInsert the document
// must already exist.
func (s *LocalStorage) UpdateToday(ctx context.Context, h domain.Highlight, isInsert bool) error {
	if err := domain.Validate(h); err != nil {
		return err
	}
	op := "insert today"
	if !isInsert {
		op = "update today"
		if _, err := os.Stat(s.todayPath()); errors.Is(err, fs.ErrNotExist) {
			return &domain.StoreError{Op: op, Err: domain.ErrTodayNotSet}
		}
	}
	doc := todayDocument{ID: domain.TodayPointerID, Highlight: h}
	if err := writeJSON(s.todayPath(), doc); err != nil {
		return &domain.StoreError{Op: op, Err: err}
	}
	return nil
}

func (s *LocalStorage) todayPath() string {
	return filepath.Join(s.BaseDir, todayDir, fmt.Sprintf("%d.json", domain.TodayPointerID))
}

type document struct {
	path      string
	highlight domain.Highlight
}

func (s *LocalStorage) scan(ctx context.Context) ([]document, error) {
	dir := filepath.Join(s.BaseDir, highlightsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	docs := make([]document, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue // removed concurrently
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var h domain.Highlight
		if err := json.Unmarshal(data, &h); err != nil {
			return nil, fmt.Errorf("corrupt document %s: %w", path, err)
		}
		docs = append(docs, document{path: path, highlight: h})
	}
	return docs, nil
}

// writeJSON writes v to path via a uniquely named temp file and rename, so
// concurrent writers to the same path never share a temp file.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
