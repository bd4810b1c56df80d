package service

import (
	"context"
	"errors"
	"io"
	"log"

	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/core/ports"
)

var discard = log.New(io.Discard, "", 0)

// fakeProvider returns scripted probe and resolve results.
type fakeProvider struct {
	probe      *ports.VideoInfo
	probeErr   error
	resolve    *ports.VideoInfo
	resolveErr error

	probeCalls   int
	resolveCalls int
}

func (f *fakeProvider) Probe(ctx context.Context, url string) (*ports.VideoInfo, error) {
	f.probeCalls++
	return f.probe, f.probeErr
}

func (f *fakeProvider) Resolve(ctx context.Context, url string) (*ports.VideoInfo, error) {
	f.resolveCalls++
	return f.resolve, f.resolveErr
}

// memStore is an in-memory ports.HighlightStore.
type memStore struct {
	all   []domain.Highlight
	today *domain.TodayPointer

	failWith    error
	inserts     int
	todayWrites []bool // isInsert flag of each UpdateToday call
}

func (m *memStore) Insert(ctx context.Context, h domain.Highlight) error {
	if err := domain.Validate(h); err != nil {
		return err
	}
	if m.failWith != nil {
		return &domain.StoreError{Op: "insert", Err: m.failWith}
	}
	m.inserts++
	m.all = append(m.all, h)
	return nil
}

func (m *memStore) Delete(ctx context.Context, videoID string) error {
	if m.failWith != nil {
		return &domain.StoreError{Op: "delete", Err: m.failWith}
	}
	kept := m.all[:0]
	for _, h := range m.all {
		if h.VideoID != videoID {
			kept = append(kept, h)
		}
	}
	m.all = kept
	return nil
}

func (m *memStore) GetAll(ctx context.Context) ([]domain.Highlight, error) {
	if m.failWith != nil {
		return nil, &domain.StoreError{Op: "query", Err: m.failWith}
	}
	return append([]domain.Highlight(nil), m.all...), nil
}

func (m *memStore) GetToday(ctx context.Context) (*domain.TodayPointer, error) {
	if m.failWith != nil {
		return nil, &domain.StoreError{Op: "query today", Err: m.failWith}
	}
	if m.today == nil {
		return nil, nil
	}
	t := *m.today
	return &t, nil
}

func (m *memStore) UpdateToday(ctx context.Context, h domain.Highlight, isInsert bool) error {
	if err := domain.Validate(h); err != nil {
		return err
	}
	if m.failWith != nil {
		return &domain.StoreError{Op: "update today", Err: m.failWith}
	}
	if !isInsert && m.today == nil {
		return &domain.StoreError{Op: "update today", Err: domain.ErrTodayNotSet}
	}
	m.todayWrites = append(m.todayWrites, isInsert)
	m.today = &domain.TodayPointer{ID: domain.TodayPointerID, Highlight: h}
	return nil
}

var errDatabaseDown = errors.New("database down")

func highlight(id string) domain.Highlight {
	return domain.Highlight{VideoID: id, Title: "Match " + id, Channel: "Tennis TV", Duration: 180}
}

func ptr[T any](v T) *T { return &v }
