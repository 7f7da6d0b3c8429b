package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"tryout-service/internal/domain"
)

// TryOutStore keeps each try-out as one JSONB document, questions embedded,
// and its attempts in a child table that is cleared on delete.
type TryOutStore struct {
	pool *pgxpool.Pool
}

func NewTryOutStore(pool *pgxpool.Pool) *TryOutStore {
	return &TryOutStore{pool: pool}
}

// document is the JSONB payload; identity and timestamps live in columns.
type document struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Duration    int               `json:"duration"`
	Questions   []domain.Question `json:"questions"`
}

func (s *TryOutStore) CreateTryOut(ctx context.Context, t domain.TryOut) (domain.TryOut, error) {
	raw, err := marshalDocument(t)
	if err != nil {
		return domain.TryOut{}, err
	}
	t.ID = uuid.NewString()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO tryouts (id, data, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		t.ID, raw, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return domain.TryOut{}, fmt.Errorf("insert tryout: %w", err)
	}
	return t, nil
}

func (s *TryOutStore) ReplaceTryOut(ctx context.Context, t domain.TryOut) (domain.TryOut, error) {
	raw, err := marshalDocument(t)
	if err != nil {
		return domain.TryOut{}, err
	}
	err = s.pool.QueryRow(ctx,
		`UPDATE tryouts SET data = $2, updated_at = $3 WHERE id = $1 RETURNING created_at`,
		t.ID, raw, t.UpdatedAt).Scan(&t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TryOut{}, domain.ErrTryOutNotFound
	}
	if err != nil {
		return domain.TryOut{}, fmt.Errorf("update tryout: %w", err)
	}
	return t, nil
}

func (s *TryOutStore) DeleteTryOut(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tryouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tryout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTryOutNotFound
	}
	return nil
}

func (s *TryOutStore) GetTryOut(ctx context.Context, id string) (domain.TryOut, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, data, created_at, updated_at FROM tryouts WHERE id = $1`, id)
	t, err := scanTryOut(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TryOut{}, domain.ErrTryOutNotFound
	}
	if err != nil {
		return domain.TryOut{}, fmt.Errorf("load tryout: %w", err)
	}
	return t, nil
}

func (s *TryOutStore) ListTryOuts(ctx context.Context) ([]domain.TryOut, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, data, created_at, updated_at FROM tryouts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list tryouts: %w", err)
	}
	defer rows.Close()

	tryouts := []domain.TryOut{}
	for rows.Next() {
		t, err := scanTryOut(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tryout: %w", err)
		}
		tryouts = append(tryouts, t)
	}
	return tryouts, rows.Err()
}

// SaveAttempt only inserts when the try-out still exists.
func (s *TryOutStore) SaveAttempt(ctx context.Context, a domain.Attempt) (domain.Attempt, error) {
	a.ID = uuid.NewString()
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (id, tryout_id, participant_id, participant_name, score, submitted_at)
		 SELECT $1::text, $2::text, $3::text, $4::text, $5::float8, $6::timestamptz
		 WHERE EXISTS (SELECT 1 FROM tryouts WHERE id = $2::text)`,
		a.ID, a.TryOutID, a.ParticipantID, a.ParticipantName, a.Score, a.SubmittedAt)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Attempt{}, domain.ErrTryOutNotFound
	}
	return a, nil
}

func (s *TryOutStore) ListAttempts(ctx context.Context, tryOutID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tryout_id, participant_id, participant_name, score, submitted_at
		 FROM attempts WHERE tryout_id = $1 ORDER BY seq`, tryOutID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	attempts := []domain.Attempt{}
	for rows.Next() {
		var a domain.Attempt
		if err := rows.Scan(&a.ID, &a.TryOutID, &a.ParticipantID, &a.ParticipantName, &a.Score, &a.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func marshalDocument(t domain.TryOut) ([]byte, error) {
	raw, err := json.Marshal(document{
		Title:       t.Title,
		Description: t.Description,
		Duration:    t.Duration,
		Questions:   t.Questions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tryout: %w", err)
	}
	return raw, nil
}

func scanTryOut(row pgx.Row) (domain.TryOut, error) {
	var (
		t       domain.TryOut
		raw     []byte
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&t.ID, &raw, &created, &updated); err != nil {
		return domain.TryOut{}, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.TryOut{}, fmt.Errorf("unmarshal tryout: %w", err)
	}
	t.Title = doc.Title
	t.Description = doc.Description
	t.Duration = doc.Duration
	t.Questions = doc.Questions
	t.CreatedAt = created
	t.UpdatedAt = updated
	return t, nil
}
