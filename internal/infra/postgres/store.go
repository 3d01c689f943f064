package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizzora/internal/domain"
)

// Store persists quizzes as one JSONB document per row, with owner and
// visibility mirrored into columns for query-by-field, and submissions as
// plain append-only rows. Quiz deletion cascades to submissions in the
// schema.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return decodeQuiz(raw)
}

func (s *Store) InsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, owner_id, is_public, data, created_at) VALUES ($1, $2, $3, $4, $5)`,
		quiz.ID, quiz.OwnerID, quiz.IsPublic, raw, quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *Store) ReplaceQuiz(ctx context.Context, quiz domain.Quiz) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET owner_id=$2, is_public=$3, data=$4 WHERE id=$1`,
		quiz.ID, quiz.OwnerID, quiz.IsPublic, raw)
	if err != nil {
		return fmt.Errorf("replace quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) ListQuizzesByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error) {
	return s.listQuizzes(ctx,
		`SELECT data FROM quizzes WHERE owner_id=$1 ORDER BY created_at DESC, id`, ownerID)
}

func (s *Store) ListPublicQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.listQuizzes(ctx,
		`SELECT data FROM quizzes WHERE is_public ORDER BY created_at DESC, id`)
}

func (s *Store) listQuizzes(ctx context.Context, query string, args ...interface{}) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Quiz, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quiz, err := decodeQuiz(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	return out, rows.Err()
}

func (s *Store) InsertSubmission(ctx context.Context, sub domain.Submission) error {
	// ON CONFLICT DO NOTHING makes the insert idempotent on the id, which is
	// what idempotency-key retries rely on.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_submissions (id, quiz_id, player_name, identity_id, score, total, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		sub.ID, sub.QuizID, sub.PlayerName, sub.IdentityID, sub.Score, sub.Total, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *Store) QuerySubmissions(ctx context.Context, quizID string) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, player_name, COALESCE(identity_id, ''), score, total, created_at
		 FROM quiz_submissions
		 WHERE quiz_id=$1
		 ORDER BY score DESC, created_at ASC, id ASC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Submission, 0)
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(&sub.ID, &sub.QuizID, &sub.PlayerName, &sub.IdentityID, &sub.Score, &sub.Total, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func decodeQuiz(raw []byte) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	quiz.Normalize()
	return quiz, nil
}
