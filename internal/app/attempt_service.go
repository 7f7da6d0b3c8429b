package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tryout-service/internal/domain"
	"tryout-service/internal/metrics"
)

// AttemptService scores submissions and records them as attempts.
type AttemptService struct {
	tryouts   TryOutReader
	attempts  AttemptStore
	analytics *AnalyticsService
	validate  *domain.Validator
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewAttemptService(tryouts TryOutReader, attempts AttemptStore, analytics *AnalyticsService, log *zap.Logger, m *metrics.Metrics) *AttemptService {
	return &AttemptService{
		tryouts:   tryouts,
		attempts:  attempts,
		analytics: analytics,
		validate:  domain.NewValidator(),
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// Submit scores a submission against the try-out and stores the attempt.
// Fewer answers than questions leaves the rest unanswered; more is rejected.
func (s *AttemptService) Submit(ctx context.Context, tryOutID string, sub domain.Submission) (domain.Attempt, error) {
	if err := s.validate.Struct(sub); err != nil {
		return domain.Attempt{}, err
	}

	tryout, err := s.tryouts.GetTryOut(ctx, tryOutID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Attempt{}, err
		}
		s.log.Error("load tryout for attempt failed", zap.String("tryout_id", tryOutID), zap.Error(err))
		return domain.Attempt{}, fmt.Errorf("load tryout: %w", err)
	}
	if len(sub.Answers) > len(tryout.Questions) {
		return domain.Attempt{}, &domain.ValidationError{Index: -1, Fields: []domain.FieldError{{
			Field:  "answers",
			Reason: fmt.Sprintf("has %d entries but the tryout has %d questions", len(sub.Answers), len(tryout.Questions)),
		}}}
	}

	attempt, err := s.attempts.SaveAttempt(ctx, domain.Attempt{
		TryOutID:        tryOutID,
		ParticipantID:   sub.ParticipantID,
		ParticipantName: sub.ParticipantName,
		Score:           Score(tryout, sub.Answers),
		SubmittedAt:     s.now(),
	})
	if err != nil {
		s.log.Error("save attempt failed", zap.String("tryout_id", tryOutID), zap.Error(err))
		return domain.Attempt{}, fmt.Errorf("save attempt: %w", err)
	}

	s.metrics.AttemptScored(attempt.Score)
	s.log.Info("attempt recorded",
		zap.String("tryout_id", tryOutID),
		zap.String("participant_id", attempt.ParticipantID),
		zap.Float64("score", attempt.Score),
	)
	if s.analytics != nil {
		s.analytics.refresh(ctx, tryOutID)
	}
	return attempt, nil
}
