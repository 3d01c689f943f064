package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizzora/internal/domain"
)

// ImportService copies a quiz into another owner's collection with an
// entirely fresh identifier namespace.
type ImportService struct {
	store Store
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string
}

func NewImportService(store Store, log logrus.FieldLogger) *ImportService {
	return &ImportService{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithIDGenerator swaps the id source, for deterministic tests.
func (s *ImportService) WithIDGenerator(gen func() string) *ImportService {
	s.newID = gen
	return s
}

// Import duplicates sourceQuizID for newOwnerID. The copy is private, its
// title carries a provenance prefix, and a corrupt correct-answer reference
// in the source becomes unset instead of propagating. All-or-nothing: the
// copy is one document insert, so a failed write leaves no partial quiz.
func (s *ImportService) Import(ctx context.Context, sourceQuizID, newOwnerID string) (domain.Quiz, error) {
	src, err := s.store.GetQuiz(ctx, sourceQuizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if len(src.Questions) == 0 {
		return domain.Quiz{}, domain.ErrEmptyQuiz
	}

	if defects := danglingAnswers(src); len(defects) > 0 {
		s.log.WithFields(logrus.Fields{
			"source_quiz_id": src.ID,
			"questions":      defects,
		}).Warn("source quiz has dangling correct-answer references; copies will have no answer marked")
	}

	dup := cloneQuiz(src, newOwnerID, s.newID, s.now())
	if err := s.store.InsertQuiz(ctx, dup); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return dup, nil
}
