package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tryout-service/internal/domain"
)

// TryOutReader is the read side of TryOutStore.
type TryOutReader interface {
	GetTryOut(ctx context.Context, id string) (domain.TryOut, error)
}

// AnalyticsService serves per-try-out statistics. Every call recomputes the
// summary from the stored attempts.
type AnalyticsService struct {
	tryouts  TryOutReader
	attempts AttemptStore
	feed     *Feed
	log      *zap.Logger
}

func NewAnalyticsService(tryouts TryOutReader, attempts AttemptStore, feed *Feed, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{tryouts: tryouts, attempts: attempts, feed: feed, log: log}
}

// Summary returns the statistics for a try-out. An unknown try-out is
// domain.ErrTryOutNotFound, never an empty summary.
func (s *AnalyticsService) Summary(ctx context.Context, tryOutID string) (domain.Stats, error) {
	if _, err := s.tryouts.GetTryOut(ctx, tryOutID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Stats{}, err
		}
		s.log.Error("load tryout for analytics failed", zap.String("tryout_id", tryOutID), zap.Error(err))
		return domain.Stats{}, fmt.Errorf("load tryout: %w", err)
	}

	attempts, err := s.attempts.ListAttempts(ctx, tryOutID)
	if err != nil {
		s.log.Error("list attempts failed", zap.String("tryout_id", tryOutID), zap.Error(err))
		return domain.Stats{}, fmt.Errorf("list attempts: %w", err)
	}
	return Summarize(tryOutID, attempts), nil
}

// Subscribe returns a channel carrying the current summary followed by a new
// one after every recorded attempt. The caller must invoke cancel.
func (s *AnalyticsService) Subscribe(ctx context.Context, tryOutID string) (<-chan domain.Stats, func(), error) {
	stats, err := s.Summary(ctx, tryOutID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.subscribe(tryOutID, stats)
	return ch, cancel, nil
}

// refresh pushes a recomputed summary to live subscribers.
func (s *AnalyticsService) refresh(ctx context.Context, tryOutID string) {
	if s.feed.subscriberCount(tryOutID) == 0 {
		return
	}
	stats, err := s.Summary(ctx, tryOutID)
	if err != nil {
		s.log.Warn("refresh analytics failed", zap.String("tryout_id", tryOutID), zap.Error(err))
		return
	}
	s.feed.publish(stats)
}
