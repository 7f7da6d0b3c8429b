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

// TryOutService authors try-out packages. A package is only ever written
// after every question has passed validation.
type TryOutService struct {
	store    TryOutStore
	validate *domain.Validator
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewTryOutService(store TryOutStore, log *zap.Logger, m *metrics.Metrics) *TryOutService {
	return &TryOutService{
		store:    store,
		validate: domain.NewValidator(),
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// Build validates a draft and stores it as a new package.
func (s *TryOutService) Build(ctx context.Context, draft domain.TryOutDraft) (domain.TryOut, error) {
	if err := s.validate.TryOut(draft); err != nil {
		return domain.TryOut{}, err
	}

	now := s.now()
	created, err := s.store.CreateTryOut(ctx, domain.TryOut{
		Title:       draft.Title,
		Description: draft.Description,
		Duration:    draft.Duration,
		Questions:   cloneQuestions(draft.Questions),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.log.Error("create tryout failed", zap.Error(err))
		return domain.TryOut{}, fmt.Errorf("create tryout: %w", err)
	}

	s.metrics.PackageBuilt()
	s.log.Info("tryout created", zap.String("tryout_id", created.ID), zap.Int("questions", len(created.Questions)))
	return created, nil
}

// Replace swaps the whole content of an existing package; its id is kept.
func (s *TryOutService) Replace(ctx context.Context, id string, draft domain.TryOutDraft) (domain.TryOut, error) {
	if err := s.validate.TryOut(draft); err != nil {
		return domain.TryOut{}, err
	}

	replaced, err := s.store.ReplaceTryOut(ctx, domain.TryOut{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Duration:    draft.Duration,
		Questions:   cloneQuestions(draft.Questions),
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return domain.TryOut{}, s.storeErr("replace tryout", id, err)
	}

	s.log.Info("tryout replaced", zap.String("tryout_id", id))
	return replaced, nil
}

// Remove deletes a package. Attempts referencing it are cleaned up by the store.
func (s *TryOutService) Remove(ctx context.Context, id string) error {
	if err := s.store.DeleteTryOut(ctx, id); err != nil {
		return s.storeErr("delete tryout", id, err)
	}
	s.log.Info("tryout deleted", zap.String("tryout_id", id))
	return nil
}

func (s *TryOutService) Get(ctx context.Context, id string) (domain.TryOut, error) {
	t, err := s.store.GetTryOut(ctx, id)
	if err != nil {
		return domain.TryOut{}, s.storeErr("get tryout", id, err)
	}
	return t, nil
}

func (s *TryOutService) List(ctx context.Context) ([]domain.TryOut, error) {
	tryouts, err := s.store.ListTryOuts(ctx)
	if err != nil {
		s.log.Error("list tryouts failed", zap.Error(err))
		return nil, fmt.Errorf("list tryouts: %w", err)
	}
	return tryouts, nil
}

// storeErr passes not-found errors through untouched and logs everything else.
func (s *TryOutService) storeErr(op, id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	s.log.Error(op+" failed", zap.String("tryout_id", id), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func cloneQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
