package app

import (
	"context"

	"quizzora/internal/domain"
)

// Store abstracts the document store the core sits on top of (Postgres,
// in-memory, or a caching decorator). Quizzes are whole documents keyed by
// id; submissions are append-only rows queried by quiz.
type Store interface {
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	InsertQuiz(ctx context.Context, quiz domain.Quiz) error
	ReplaceQuiz(ctx context.Context, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, id string) error
	ListQuizzesByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error)
	ListPublicQuizzes(ctx context.Context) ([]domain.Quiz, error)

	// InsertSubmission is idempotent on the submission id: inserting an id
	// that already exists is a no-op, which is what makes client retries
	// with an idempotency key safe.
	InsertSubmission(ctx context.Context, sub domain.Submission) error
	// QuerySubmissions returns all submissions for a quiz ordered by score
	// descending, then created_at ascending, then id ascending.
	QuerySubmissions(ctx context.Context, quizID string) ([]domain.Submission, error)
}
