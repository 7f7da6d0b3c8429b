package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tryout-service/internal/domain"
)

// CatalogService manages subjects, their chapters and each chapter's question
// bank. Bank questions follow the same rules as try-out questions but are
// never shared with a try-out package.
type CatalogService struct {
	store    CatalogStore
	validate *domain.Validator
	log      *zap.Logger
	now      func() time.Time
}

func NewCatalogService(store CatalogStore, log *zap.Logger) *CatalogService {
	return &CatalogService{
		store:    store,
		validate: domain.NewValidator(),
		log:      log,
		now:      time.Now,
	}
}

func (s *CatalogService) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	subjects, err := s.store.ListSubjects(ctx)
	return subjects, s.wrap("list subjects", "", err)
}

func (s *CatalogService) GetSubject(ctx context.Context, id string) (domain.Subject, error) {
	subject, err := s.store.GetSubject(ctx, id)
	return subject, s.wrap("get subject", id, err)
}

func (s *CatalogService) CreateSubject(ctx context.Context, subject domain.Subject) (domain.Subject, error) {
	if err := s.validate.Struct(subject); err != nil {
		return domain.Subject{}, err
	}
	now := s.now()
	subject.ID, subject.CreatedAt, subject.UpdatedAt = "", now, now
	created, err := s.store.CreateSubject(ctx, subject)
	return created, s.wrap("create subject", "", err)
}

func (s *CatalogService) UpdateSubject(ctx context.Context, id string, subject domain.Subject) (domain.Subject, error) {
	if err := s.validate.Struct(subject); err != nil {
		return domain.Subject{}, err
	}
	subject.ID, subject.UpdatedAt = id, s.now()
	updated, err := s.store.UpdateSubject(ctx, subject)
	return updated, s.wrap("update subject", id, err)
}

func (s *CatalogService) DeleteSubject(ctx context.Context, id string) error {
	return s.wrap("delete subject", id, s.store.DeleteSubject(ctx, id))
}

// ListChapters fails with domain.ErrSubjectNotFound for an unknown subject.
func (s *CatalogService) ListChapters(ctx context.Context, subjectID string) ([]domain.Chapter, error) {
	if _, err := s.store.GetSubject(ctx, subjectID); err != nil {
		return nil, s.wrap("get subject", subjectID, err)
	}
	chapters, err := s.store.ListChapters(ctx, subjectID)
	return chapters, s.wrap("list chapters", subjectID, err)
}

func (s *CatalogService) GetChapter(ctx context.Context, id string) (domain.Chapter, error) {
	chapter, err := s.store.GetChapter(ctx, id)
	return chapter, s.wrap("get chapter", id, err)
}

func (s *CatalogService) CreateChapter(ctx context.Context, chapter domain.Chapter) (domain.Chapter, error) {
	if err := s.validate.Struct(chapter); err != nil {
		return domain.Chapter{}, err
	}
	if _, err := s.store.GetSubject(ctx, chapter.SubjectID); err != nil {
		return domain.Chapter{}, s.wrap("get subject", chapter.SubjectID, err)
	}
	now := s.now()
	chapter.ID, chapter.CreatedAt, chapter.UpdatedAt = "", now, now
	created, err := s.store.CreateChapter(ctx, chapter)
	return created, s.wrap("create chapter", "", err)
}

func (s *CatalogService) UpdateChapter(ctx context.Context, id string, chapter domain.Chapter) (domain.Chapter, error) {
	if err := s.validate.Struct(chapter); err != nil {
		return domain.Chapter{}, err
	}
	if _, err := s.store.GetSubject(ctx, chapter.SubjectID); err != nil {
		return domain.Chapter{}, s.wrap("get subject", chapter.SubjectID, err)
	}
	chapter.ID, chapter.UpdatedAt = id, s.now()
	updated, err := s.store.UpdateChapter(ctx, chapter)
	return updated, s.wrap("update chapter", id, err)
}

func (s *CatalogService) DeleteChapter(ctx context.Context, id string) error {
	return s.wrap("delete chapter", id, s.store.DeleteChapter(ctx, id))
}

// ListQuestions fails with domain.ErrChapterNotFound for an unknown chapter.
func (s *CatalogService) ListQuestions(ctx context.Context, chapterID string) ([]domain.BankQuestion, error) {
	if _, err := s.store.GetChapter(ctx, chapterID); err != nil {
		return nil, s.wrap("get chapter", chapterID, err)
	}
	questions, err := s.store.ListQuestions(ctx, chapterID)
	return questions, s.wrap("list questions", chapterID, err)
}

func (s *CatalogService) GetQuestion(ctx context.Context, id string) (domain.BankQuestion, error) {
	q, err := s.store.GetQuestion(ctx, id)
	return q, s.wrap("get question", id, err)
}

func (s *CatalogService) CreateQuestion(ctx context.Context, q domain.BankQuestion) (domain.BankQuestion, error) {
	if err := s.validateBankQuestion(q); err != nil {
		return domain.BankQuestion{}, err
	}
	if _, err := s.store.GetChapter(ctx, q.ChapterID); err != nil {
		return domain.BankQuestion{}, s.wrap("get chapter", q.ChapterID, err)
	}
	now := s.now()
	q.ID, q.CreatedAt, q.UpdatedAt = "", now, now
	q.Options = append([]string(nil), q.Options...)
	created, err := s.store.CreateQuestion(ctx, q)
	return created, s.wrap("create question", "", err)
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, id string, q domain.BankQuestion) (domain.BankQuestion, error) {
	if err := s.validateBankQuestion(q); err != nil {
		return domain.BankQuestion{}, err
	}
	if _, err := s.store.GetChapter(ctx, q.ChapterID); err != nil {
		return domain.BankQuestion{}, s.wrap("get chapter", q.ChapterID, err)
	}
	q.ID, q.UpdatedAt = id, s.now()
	q.Options = append([]string(nil), q.Options...)
	updated, err := s.store.UpdateQuestion(ctx, q)
	return updated, s.wrap("update question", id, err)
}

func (s *CatalogService) DeleteQuestion(ctx context.Context, id string) error {
	return s.wrap("delete question", id, s.store.DeleteQuestion(ctx, id))
}

func (s *CatalogService) validateBankQuestion(q domain.BankQuestion) error {
	if q.ChapterID == "" {
		return &domain.ValidationError{Index: -1, Fields: []domain.FieldError{{Field: "chapterId", Reason: "is required"}}}
	}
	return s.validate.Question(q.Question)
}

// wrap leaves nil, validation and not-found errors as they are; anything else
// is an upstream failure and gets logged.
func (s *CatalogService) wrap(op, id string, err error) error {
	if err == nil || errors.Is(err, domain.ErrNotFound) || domain.IsValidation(err) {
		return err
	}
	s.log.Error(op+" failed", zap.String("id", id), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}
