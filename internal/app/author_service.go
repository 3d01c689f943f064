package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quizzora/internal/domain"
)

// AuthorService covers the owner-side document lifecycle: create, whole
// document replace-on-save, visibility toggling, and deletion. Ownership is
// checked upstream by the identity provider; these methods re-check against
// the stored document so a stale client cannot mutate someone else's quiz.
type AuthorService struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewAuthorService(store Store) *AuthorService {
	return &AuthorService{store: store, now: time.Now, newID: uuid.NewString}
}

// Create inserts a brand new quiz document. Missing quiz, question or option
// ids are allocated server-side; client-supplied ids are kept so the editor
// can build the document offline.
func (s *AuthorService) Create(ctx context.Context, ownerID string, quiz domain.Quiz) (domain.Quiz, error) {
	quiz.OwnerID = ownerID
	quiz.CreatedAt = s.now()
	if quiz.ID == "" {
		quiz.ID = s.newID()
	}
	s.allocateNestedIDs(&quiz)
	quiz.Normalize()
	if err := s.store.InsertQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return quiz, nil
}

// Save replaces the stored document wholesale. Identity, ownership and
// creation time are taken from the stored copy, never from the request;
// concurrent saves by the same owner are last-write-wins.
func (s *AuthorService) Save(ctx context.Context, ownerID string, quiz domain.Quiz) (domain.Quiz, error) {
	existing, err := s.store.GetQuiz(ctx, quiz.ID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if existing.OwnerID != ownerID {
		return domain.Quiz{}, domain.ErrNotOwner
	}
	quiz.OwnerID = existing.OwnerID
	quiz.CreatedAt = existing.CreatedAt
	s.allocateNestedIDs(&quiz)
	quiz.Normalize()
	if err := s.store.ReplaceQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return quiz, nil
}

// allocateNestedIDs fills in missing question and option ids so every node in
// the document is addressable. Ids the client already set are kept.
func (s *AuthorService) allocateNestedIDs(quiz *domain.Quiz) {
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = s.newID()
		}
		for j := range quiz.Questions[i].Options {
			if quiz.Questions[i].Options[j].ID == "" {
				quiz.Questions[i].Options[j].ID = s.newID()
			}
		}
	}
}

// SetVisibility flips the marketplace flag. Listing a quiz publicly grants
// nothing beyond readable-by-id.
func (s *AuthorService) SetVisibility(ctx context.Context, ownerID, quizID string, public bool) error {
	existing, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if existing.OwnerID != ownerID {
		return domain.ErrNotOwner
	}
	existing.IsPublic = public
	if err := s.store.ReplaceQuiz(ctx, existing); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

// Delete removes the quiz; the store cascades its submissions.
func (s *AuthorService) Delete(ctx context.Context, ownerID, quizID string) error {
	existing, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if existing.OwnerID != ownerID {
		return domain.ErrNotOwner
	}
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

// ListByOwner returns the owner's quizzes with answer keys intact.
func (s *AuthorService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error) {
	return s.store.ListQuizzesByOwner(ctx, ownerID)
}

// ListPublic returns marketplace quizzes sanitized for browsing.
func (s *AuthorService) ListPublic(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.store.ListPublicQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, q.Sanitized())
	}
	return out, nil
}
