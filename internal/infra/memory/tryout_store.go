package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tryout-service/internal/domain"
)

// TryOutStore is an in-memory implementation of app.TryOutStore and
// app.AttemptStore. Values are copied on the way in and out.
type TryOutStore struct {
	mu       sync.RWMutex
	tryouts  map[string]domain.TryOut
	attempts map[string][]domain.Attempt
}

func NewTryOutStore() *TryOutStore {
	return &TryOutStore{
		tryouts:  make(map[string]domain.TryOut),
		attempts: make(map[string][]domain.Attempt),
	}
}

func (s *TryOutStore) CreateTryOut(_ context.Context, t domain.TryOut) (domain.TryOut, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.tryouts[t.ID] = copyTryOut(t)
	return copyTryOut(t), nil
}

func (s *TryOutStore) ReplaceTryOut(_ context.Context, t domain.TryOut) (domain.TryOut, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tryouts[t.ID]
	if !ok {
		return domain.TryOut{}, domain.ErrTryOutNotFound
	}
	t.CreatedAt = existing.CreatedAt
	s.tryouts[t.ID] = copyTryOut(t)
	return copyTryOut(t), nil
}

// DeleteTryOut also drops the try-out's attempts.
func (s *TryOutStore) DeleteTryOut(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tryouts[id]; !ok {
		return domain.ErrTryOutNotFound
	}
	delete(s.tryouts, id)
	delete(s.attempts, id)
	return nil
}

func (s *TryOutStore) GetTryOut(_ context.Context, id string) (domain.TryOut, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tryouts[id]
	if !ok {
		return domain.TryOut{}, domain.ErrTryOutNotFound
	}
	return copyTryOut(t), nil
}

// ListTryOuts returns packages newest first.
func (s *TryOutStore) ListTryOuts(_ context.Context) ([]domain.TryOut, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TryOut, 0, len(s.tryouts))
	for _, t := range s.tryouts {
		out = append(out, copyTryOut(t))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *TryOutStore) SaveAttempt(_ context.Context, a domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tryouts[a.TryOutID]; !ok {
		return domain.Attempt{}, domain.ErrTryOutNotFound
	}
	a.ID = uuid.NewString()
	s.attempts[a.TryOutID] = append(s.attempts[a.TryOutID], a)
	return a, nil
}

func (s *TryOutStore) ListAttempts(_ context.Context, tryOutID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Attempt{}, s.attempts[tryOutID]...), nil
}

func copyTryOut(t domain.TryOut) domain.TryOut {
	questions := make([]domain.Question, len(t.Questions))
	for i, q := range t.Questions {
		q.Options = append([]string(nil), q.Options...)
		questions[i] = q
	}
	t.Questions = questions
	return t
}
