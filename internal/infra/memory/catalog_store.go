package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tryout-service/internal/domain"
)

// CatalogStore is an in-memory implementation of app.CatalogStore.
// Deletes cascade from subjects to chapters to bank questions.
type CatalogStore struct {
	mu        sync.RWMutex
	subjects  map[string]domain.Subject
	chapters  map[string]domain.Chapter
	questions map[string]domain.BankQuestion
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		subjects:  make(map[string]domain.Subject),
		chapters:  make(map[string]domain.Chapter),
		questions: make(map[string]domain.BankQuestion),
	}
}

func (s *CatalogStore) ListSubjects(_ context.Context) ([]domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Subject, 0, len(s.subjects))
	for _, subject := range s.subjects {
		out = append(out, subject)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *CatalogStore) GetSubject(_ context.Context, id string) (domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.subjects[id]
	if !ok {
		return domain.Subject{}, domain.ErrSubjectNotFound
	}
	return subject, nil
}

func (s *CatalogStore) CreateSubject(_ context.Context, subject domain.Subject) (domain.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subject.ID = uuid.NewString()
	s.subjects[subject.ID] = subject
	return subject, nil
}

func (s *CatalogStore) UpdateSubject(_ context.Context, subject domain.Subject) (domain.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.subjects[subject.ID]
	if !ok {
		return domain.Subject{}, domain.ErrSubjectNotFound
	}
	subject.CreatedAt = existing.CreatedAt
	s.subjects[subject.ID] = subject
	return subject, nil
}

func (s *CatalogStore) DeleteSubject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[id]; !ok {
		return domain.ErrSubjectNotFound
	}
	delete(s.subjects, id)
	for chapterID, chapter := range s.chapters {
		if chapter.SubjectID == id {
			s.deleteChapterLocked(chapterID)
		}
	}
	return nil
}

func (s *CatalogStore) ListChapters(_ context.Context, subjectID string) ([]domain.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chapter, 0)
	for _, chapter := range s.chapters {
		if chapter.SubjectID == subjectID {
			out = append(out, chapter)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *CatalogStore) GetChapter(_ context.Context, id string) (domain.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chapter, ok := s.chapters[id]
	if !ok {
		return domain.Chapter{}, domain.ErrChapterNotFound
	}
	return chapter, nil
}

func (s *CatalogStore) CreateChapter(_ context.Context, chapter domain.Chapter) (domain.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[chapter.SubjectID]; !ok {
		return domain.Chapter{}, domain.ErrSubjectNotFound
	}
	chapter.ID = uuid.NewString()
	s.chapters[chapter.ID] = chapter
	return chapter, nil
}

func (s *CatalogStore) UpdateChapter(_ context.Context, chapter domain.Chapter) (domain.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.chapters[chapter.ID]
	if !ok {
		return domain.Chapter{}, domain.ErrChapterNotFound
	}
	chapter.CreatedAt = existing.CreatedAt
	s.chapters[chapter.ID] = chapter
	return chapter, nil
}

func (s *CatalogStore) DeleteChapter(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chapters[id]; !ok {
		return domain.ErrChapterNotFound
	}
	s.deleteChapterLocked(id)
	return nil
}

func (s *CatalogStore) deleteChapterLocked(id string) {
	delete(s.chapters, id)
	for questionID, q := range s.questions {
		if q.ChapterID == id {
			delete(s.questions, questionID)
		}
	}
}

func (s *CatalogStore) ListQuestions(_ context.Context, chapterID string) ([]domain.BankQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BankQuestion, 0)
	for _, q := range s.questions {
		if q.ChapterID == chapterID {
			out = append(out, copyBankQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *CatalogStore) GetQuestion(_ context.Context, id string) (domain.BankQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.BankQuestion{}, domain.ErrQuestionNotFound
	}
	return copyBankQuestion(q), nil
}

func (s *CatalogStore) CreateQuestion(_ context.Context, q domain.BankQuestion) (domain.BankQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chapters[q.ChapterID]; !ok {
		return domain.BankQuestion{}, domain.ErrChapterNotFound
	}
	q.ID = uuid.NewString()
	s.questions[q.ID] = copyBankQuestion(q)
	return q, nil
}

func (s *CatalogStore) UpdateQuestion(_ context.Context, q domain.BankQuestion) (domain.BankQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.questions[q.ID]
	if !ok {
		return domain.BankQuestion{}, domain.ErrQuestionNotFound
	}
	q.CreatedAt = existing.CreatedAt
	s.questions[q.ID] = copyBankQuestion(q)
	return q, nil
}

func (s *CatalogStore) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

func copyBankQuestion(q domain.BankQuestion) domain.BankQuestion {
	q.Options = append([]string(nil), q.Options...)
	return q
}
