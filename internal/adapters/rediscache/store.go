package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/core/ports"
)

const (
	// DefaultTTL bounds how long a cached list may be served.
	DefaultTTL = 5 * time.Minute

	allKey = "highlights:all"
	// genKey is bumped on every write; a fill is only stored if it did not
	// move while the underlying store was read.
	genKey = "highlights:gen"
)

// Store caches GetAll of an underlying store in Redis. Writes to the
// highlights collection invalidate the cached list. The today pointer is
// never cached. Redis failures are logged and bypassed.
type Store struct {
	next   ports.HighlightStore
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *log.Logger
}

// New wraps next with a Redis read-through cache.
func New(next ports.HighlightStore, rdb redis.UniversalClient, ttl time.Duration, logger *log.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// Insert stores h and drops the cached list.
func (s *Store) Insert(ctx context.Context, h domain.Highlight) error {
	if err := s.next.Insert(ctx, h); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes videoID and drops the cached list.
func (s *Store) Delete(ctx context.Context, videoID string) error {
	if err := s.next.Delete(ctx, videoID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// GetAll serves the cached list, loading it from the underlying store on a
// miss.
func (s *Store) GetAll(ctx context.Context) ([]domain.Highlight, error) {
	data, err := s.rdb.Get(ctx, allKey).Bytes()
	switch {
	case err == nil:
		var all []domain.Highlight
		if err := json.Unmarshal(data, &all); err == nil {
			return all, nil
		}
		s.logger.Printf("rediscache: corrupt %s entry, reloading", allKey)
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Printf("rediscache: get %s: %v", allKey, err)
	}

	gen, genErr := s.generation(ctx)
	all, err := s.next.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		s.logger.Printf("rediscache: get %s: %v", genKey, genErr)
		return all, nil
	}
	s.fill(ctx, gen, all)
	return all, nil
}

func (s *Store) generation(ctx context.Context) (int64, error) {
	gen, err := s.rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// fill caches all unless a write bumped the generation after gen was read.
func (s *Store) fill(ctx context.Context, gen int64, all []domain.Highlight) {
	data, err := json.Marshal(all)
	if err != nil {
		return
	}
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, allKey, data, s.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil, errors.Is(err, redis.TxFailedErr):
	default:
		s.logger.Printf("rediscache: set %s: %v", allKey, err)
	}
}

// GetToday reads through to the underlying store.
func (s *Store) GetToday(ctx context.Context) (*domain.TodayPointer, error) {
	return s.next.GetToday(ctx)
}

// UpdateToday writes through to the underlying store.
func (s *Store) UpdateToday(ctx context.Context, h domain.Highlight, isInsert bool) error {
	return s.next.UpdateToday(ctx, h, isInsert)
}

func (s *Store) invalidate(ctx context.Context) {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Del(ctx, allKey)
		return nil
	})
	if err != nil {
		s.logger.Printf("rediscache: invalidate %s: %v", allKey, err)
	}
}
