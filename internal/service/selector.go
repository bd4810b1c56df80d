package service

import (
	"context"
	"log"
	"math/rand/v2"

	"tennishighlights/internal/core/domain"
	"tennishighlights/internal/core/ports"
)

// Selector picks and rotates the featured highlight. It keeps no state of
// its own; the pointer lives in the store.
type Selector struct {
	store  ports.HighlightStore
	intn   func(n int) int
	logger *log.Logger
}

// NewSelector creates a Selector drawing indices from math/rand/v2.
func NewSelector(store ports.HighlightStore, logger *log.Logger) *Selector {
	return &Selector{store: store, intn: rand.IntN, logger: logger}
}

// WithRand replaces the index source, which must return a value in [0, n).
func (s *Selector) WithRand(intn func(n int) int) *Selector {
	s.intn = intn
	return s
}

// Current returns the featured highlight, selecting one at random when the
// pointer is unset or references a highlight that is no longer in all.
func (s *Selector) Current(ctx context.Context, all []domain.Highlight) (domain.Highlight, error) {
	if len(all) == 0 {
		return domain.Highlight{}, domain.ErrNoHighlights
	}

	today, err := s.store.GetToday(ctx)
	if err != nil {
		return domain.Highlight{}, err
	}
	if today != nil && domain.Contains(all, today.Highlight.VideoID) {
		return today.Highlight, nil
	}

	if today != nil {
		s.logger.Printf("[TODAY] pointer %s is stale, re-selecting", today.Highlight.VideoID)
	}
	pick := all[s.intn(len(all))]
	if err := s.store.UpdateToday(ctx, pick, true); err != nil {
		return domain.Highlight{}, err
	}
	s.logger.Printf("[TODAY] selected %s", pick.VideoID)
	return pick, nil
}

// Rotate replaces current with a different highlight drawn uniformly from
// all. A single-highlight collection re-selects that highlight.
func (s *Selector) Rotate(ctx context.Context, all []domain.Highlight, current domain.Highlight) (domain.Highlight, error) {
	if len(all) == 0 {
		return domain.Highlight{}, domain.ErrNoHighlights
	}

	candidates := all
	if len(all) > 1 {
		candidates = make([]domain.Highlight, 0, len(all))
		for _, h := range all {
			if h.VideoID != current.VideoID {
				candidates = append(candidates, h)
			}
		}
		// every entry shares the current id (duplicates)
		if len(candidates) == 0 {
			candidates = all
		}
	}

	pick := candidates[s.intn(len(candidates))]
	if err := s.store.UpdateToday(ctx, pick, false); err != nil {
		return domain.Highlight{}, err
	}
	s.logger.Printf("[TODAY] rotated %s -> %s", current.VideoID, pick.VideoID)
	return pick, nil
}
