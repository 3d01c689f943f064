package memory

import (
	"context"
	"sort"
	"sync"

	"quizzora/internal/domain"
)

// Store is a map-backed implementation of app.Store, useful for tests and
// for running the service without external dependencies. It applies the
// same ordering and cascade semantics as the Postgres store.
type Store struct {
	mu          sync.RWMutex
	quizzes     map[string]domain.Quiz
	submissions map[string]domain.Submission
}

func NewStore() *Store {
	return &Store{
		quizzes:     make(map[string]domain.Quiz),
		submissions: make(map[string]domain.Submission),
	}
}

func (s *Store) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	dup := cloneQuiz(quiz)
	dup.Normalize()
	return dup, nil
}

func (s *Store) InsertQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *Store) ReplaceQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *Store) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	for subID, sub := range s.submissions {
		if sub.QuizID == id {
			delete(s.submissions, subID)
		}
	}
	return nil
}

func (s *Store) ListQuizzesByOwner(_ context.Context, ownerID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Quiz
	for _, quiz := range s.quizzes {
		if quiz.OwnerID == ownerID {
			out = append(out, cloneQuiz(quiz))
		}
	}
	sortQuizzes(out)
	return out, nil
}

func (s *Store) ListPublicQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Quiz
	for _, quiz := range s.quizzes {
		if quiz.IsPublic {
			out = append(out, cloneQuiz(quiz))
		}
	}
	sortQuizzes(out)
	return out, nil
}

func (s *Store) InsertSubmission(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[sub.ID]; ok {
		return nil // idempotent on id
	}
	s.submissions[sub.ID] = sub
	return nil
}

func (s *Store) QuerySubmissions(_ context.Context, quizID string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.submissions {
		if sub.QuizID == quizID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// cloneQuiz keeps callers from sharing question/option storage with the map.
func cloneQuiz(q domain.Quiz) domain.Quiz {
	out := q
	out.Questions = make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		c := question
		c.Options = append([]domain.Option(nil), question.Options...)
		out.Questions[i] = c
	}
	return out
}

func sortQuizzes(quizzes []domain.Quiz) {
	sort.Slice(quizzes, func(i, j int) bool {
		if !quizzes[i].CreatedAt.Equal(quizzes[j].CreatedAt) {
			return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
		}
		return quizzes[i].ID < quizzes[j].ID
	})
}
