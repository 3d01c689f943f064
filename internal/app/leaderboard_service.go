package app

import (
	"context"

	"quizzora/internal/domain"
)

// LeaderboardService produces the ranked view over a quiz's submissions.
// Each call is one fresh consistent read; viewers poll it on an interval and
// replace their previous list wholesale.
type LeaderboardService struct {
	store Store
}

func NewLeaderboardService(store Store) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// Leaderboard returns all submissions for the quiz ordered by score
// descending, then created_at ascending (earliest wins a tie), then id
// ascending so identical queries return identical order. Rank is positional:
// entry i holds rank i+1. Unknown quizzes surface ErrQuizNotFound.
func (s *LeaderboardService) Leaderboard(ctx context.Context, quizID string) ([]domain.Submission, error) {
	if _, err := s.store.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.store.QuerySubmissions(ctx, quizID)
}
