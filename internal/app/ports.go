package app

import (
	"context"

	"tryout-service/internal/domain"
)

// TryOutStore persists try-out documents. Implementations assign identities on
// create, keep CreatedAt on replace and return domain.ErrTryOutNotFound for
// unknown ids.
type TryOutStore interface {
	CreateTryOut(ctx context.Context, t domain.TryOut) (domain.TryOut, error)
	ReplaceTryOut(ctx context.Context, t domain.TryOut) (domain.TryOut, error)
	DeleteTryOut(ctx context.Context, id string) error
	GetTryOut(ctx context.Context, id string) (domain.TryOut, error)
	ListTryOuts(ctx context.Context) ([]domain.TryOut, error)
}

// AttemptStore persists scored attempts. ListAttempts returns them in
// submission order.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, a domain.Attempt) (domain.Attempt, error)
	ListAttempts(ctx context.Context, tryOutID string) ([]domain.Attempt, error)
}

// SubjectStore persists subjects. Deleting a subject removes its chapters.
type SubjectStore interface {
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	GetSubject(ctx context.Context, id string) (domain.Subject, error)
	CreateSubject(ctx context.Context, s domain.Subject) (domain.Subject, error)
	UpdateSubject(ctx context.Context, s domain.Subject) (domain.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
}

// ChapterStore persists chapters. Deleting a chapter removes its question bank.
type ChapterStore interface {
	ListChapters(ctx context.Context, subjectID string) ([]domain.Chapter, error)
	GetChapter(ctx context.Context, id string) (domain.Chapter, error)
	CreateChapter(ctx context.Context, c domain.Chapter) (domain.Chapter, error)
	UpdateChapter(ctx context.Context, c domain.Chapter) (domain.Chapter, error)
	DeleteChapter(ctx context.Context, id string) error
}

// QuestionBankStore persists chapter quiz questions.
type QuestionBankStore interface {
	ListQuestions(ctx context.Context, chapterID string) ([]domain.BankQuestion, error)
	GetQuestion(ctx context.Context, id string) (domain.BankQuestion, error)
	CreateQuestion(ctx context.Context, q domain.BankQuestion) (domain.BankQuestion, error)
	UpdateQuestion(ctx context.Context, q domain.BankQuestion) (domain.BankQuestion, error)
	DeleteQuestion(ctx context.Context, id string) error
}

// CatalogStore groups the subject, chapter and question bank stores.
type CatalogStore interface {
	SubjectStore
	ChapterStore
	QuestionBankStore
}
