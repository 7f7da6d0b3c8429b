package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"tryout-service/internal/domain"
)

type subjectRow struct {
	bun.BaseModel `bun:"table:subjects"`

	ID          string    `bun:"id,pk"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

type chapterRow struct {
	bun.BaseModel `bun:"table:chapters"`

	ID          string    `bun:"id,pk"`
	SubjectID   string    `bun:"subject_id,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:bank_questions"`

	ID            string    `bun:"id,pk"`
	ChapterID     string    `bun:"chapter_id,notnull"`
	Prompt        string    `bun:"question,notnull"`
	Options       []string  `bun:"options,type:jsonb,notnull"`
	CorrectAnswer string    `bun:"correct_answer,notnull"`
	Explanation   string    `bun:"explanation,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// CatalogStore persists subjects, chapters and chapter question banks through
// bun. Child rows are removed by ON DELETE CASCADE.
type CatalogStore struct {
	db *bun.DB
}

func NewCatalogStore(db *bun.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	var rows []subjectRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	out := make([]domain.Subject, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *CatalogStore) GetSubject(ctx context.Context, id string) (domain.Subject, error) {
	var row subjectRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subject{}, domain.ErrSubjectNotFound
	}
	if err != nil {
		return domain.Subject{}, fmt.Errorf("load subject: %w", err)
	}
	return row.toDomain(), nil
}

func (s *CatalogStore) CreateSubject(ctx context.Context, subject domain.Subject) (domain.Subject, error) {
	subject.ID = uuid.NewString()
	row := subjectRow{
		ID:          subject.ID,
		Title:       subject.Title,
		Description: subject.Description,
		CreatedAt:   subject.CreatedAt,
		UpdatedAt:   subject.UpdatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Subject{}, fmt.Errorf("insert subject: %w", err)
	}
	return subject, nil
}

func (s *CatalogStore) UpdateSubject(ctx context.Context, subject domain.Subject) (domain.Subject, error) {
	row := subjectRow{
		ID:          subject.ID,
		Title:       subject.Title,
		Description: subject.Description,
		UpdatedAt:   subject.UpdatedAt,
	}
	res, err := s.db.NewUpdate().Model(&row).Column("title", "description", "updated_at").WherePK().Exec(ctx)
	if err := affected(res, err, domain.ErrSubjectNotFound); err != nil {
		return domain.Subject{}, fmt.Errorf("update subject: %w", err)
	}
	return s.GetSubject(ctx, subject.ID)
}

func (s *CatalogStore) DeleteSubject(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*subjectRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err := affected(res, err, domain.ErrSubjectNotFound); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

func (s *CatalogStore) ListChapters(ctx context.Context, subjectID string) ([]domain.Chapter, error) {
	var rows []chapterRow
	err := s.db.NewSelect().Model(&rows).Where("subject_id = ?", subjectID).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	out := make([]domain.Chapter, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *CatalogStore) GetChapter(ctx context.Context, id string) (domain.Chapter, error) {
	var row chapterRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Chapter{}, domain.ErrChapterNotFound
	}
	if err != nil {
		return domain.Chapter{}, fmt.Errorf("load chapter: %w", err)
	}
	return row.toDomain(), nil
}

func (s *CatalogStore) CreateChapter(ctx context.Context, chapter domain.Chapter) (domain.Chapter, error) {
	chapter.ID = uuid.NewString()
	row := chapterRow{
		ID:          chapter.ID,
		SubjectID:   chapter.SubjectID,
		Title:       chapter.Title,
		Description: chapter.Description,
		CreatedAt:   chapter.CreatedAt,
		UpdatedAt:   chapter.UpdatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Chapter{}, fmt.Errorf("insert chapter: %w", err)
	}
	return chapter, nil
}

func (s *CatalogStore) UpdateChapter(ctx context.Context, chapter domain.Chapter) (domain.Chapter, error) {
	row := chapterRow{
		ID:          chapter.ID,
		SubjectID:   chapter.SubjectID,
		Title:       chapter.Title,
		Description: chapter.Description,
		UpdatedAt:   chapter.UpdatedAt,
	}
	res, err := s.db.NewUpdate().Model(&row).Column("subject_id", "title", "description", "updated_at").WherePK().Exec(ctx)
	if err := affected(res, err, domain.ErrChapterNotFound); err != nil {
		return domain.Chapter{}, fmt.Errorf("update chapter: %w", err)
	}
	return s.GetChapter(ctx, chapter.ID)
}

func (s *CatalogStore) DeleteChapter(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*chapterRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err := affected(res, err, domain.ErrChapterNotFound); err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}
	return nil
}

func (s *CatalogStore) ListQuestions(ctx context.Context, chapterID string) ([]domain.BankQuestion, error) {
	var rows []questionRow
	err := s.db.NewSelect().Model(&rows).Where("chapter_id = ?", chapterID).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]domain.BankQuestion, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *CatalogStore) GetQuestion(ctx context.Context, id string) (domain.BankQuestion, error) {
	var row questionRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BankQuestion{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.BankQuestion{}, fmt.Errorf("load question: %w", err)
	}
	return row.toDomain(), nil
}

func (s *CatalogStore) CreateQuestion(ctx context.Context, q domain.BankQuestion) (domain.BankQuestion, error) {
	q.ID = uuid.NewString()
	row := newQuestionRow(q)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.BankQuestion{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *CatalogStore) UpdateQuestion(ctx context.Context, q domain.BankQuestion) (domain.BankQuestion, error) {
	row := newQuestionRow(q)
	res, err := s.db.NewUpdate().Model(&row).
		Column("chapter_id", "question", "options", "correct_answer", "explanation", "updated_at").
		WherePK().
		Exec(ctx)
	if err := affected(res, err, domain.ErrQuestionNotFound); err != nil {
		return domain.BankQuestion{}, fmt.Errorf("update question: %w", err)
	}
	return s.GetQuestion(ctx, q.ID)
}

func (s *CatalogStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err := affected(res, err, domain.ErrQuestionNotFound); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

// affected turns a zero-row write into notFound.
func affected(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (r subjectRow) toDomain() domain.Subject {
	return domain.Subject{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r chapterRow) toDomain() domain.Chapter {
	return domain.Chapter{
		ID:          r.ID,
		SubjectID:   r.SubjectID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func newQuestionRow(q domain.BankQuestion) questionRow {
	return questionRow{
		ID:            q.ID,
		ChapterID:     q.ChapterID,
		Prompt:        q.Prompt,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

func (r questionRow) toDomain() domain.BankQuestion {
	return domain.BankQuestion{
		ID:        r.ID,
		ChapterID: r.ChapterID,
		Question: domain.Question{
			Prompt:        r.Prompt,
			Options:       r.Options,
			CorrectAnswer: r.CorrectAnswer,
			Explanation:   r.Explanation,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
