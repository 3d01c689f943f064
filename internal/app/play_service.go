package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizzora/internal/domain"
)

// SubmitRequest carries one play-through to be graded and recorded. Identity
// is passed explicitly; the core never reads ambient session state.
type SubmitRequest struct {
	QuizID     string
	PlayerName string
	IdentityID string
	Answers    domain.AnswerSet

	// IdempotencyKey, when set, pins the submission id so a client retry of
	// the same play-through lands on the same row instead of double
	// counting. When empty, repeated submits produce distinct rows.
	IdempotencyKey string
}

// PlayResult is what the player sees. Recorded is false when grading
// succeeded but the leaderboard write failed; the score is still valid.
type PlayResult struct {
	SubmissionID string
	Score        int
	Total        int
	Percent      float64
	Recorded     bool
	RecordErr    error
}

// PlayService sequences the grade-then-record flow behind the player-facing
// submit action.
type PlayService struct {
	store Store
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string
}

func NewPlayService(store Store, log logrus.FieldLogger) *PlayService {
	return &PlayService{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock fixes the timestamp source, for deterministic tests.
func (s *PlayService) WithClock(now func() time.Time) *PlayService {
	s.now = now
	return s
}

// QuizForPlay fetches a quiz with the answer key stripped, which is the only
// shape the play flow is allowed to see before submitting.
func (s *PlayService) QuizForPlay(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz.Sanitized(), nil
}

// Submit grades the answers against the server-held answer key and records
// the outcome as a leaderboard entry. A persistence failure does not fail
// the call: the player still gets their score, the failure travels in
// RecordErr, and the incident goes to the operator log.
func (s *PlayService) Submit(ctx context.Context, req SubmitRequest) (PlayResult, error) {
	quiz, err := s.store.GetQuiz(ctx, req.QuizID)
	if err != nil {
		return PlayResult{}, err
	}

	if defects := danglingAnswers(quiz); len(defects) > 0 {
		s.log.WithFields(logrus.Fields{
			"quiz_id":   quiz.ID,
			"questions": defects,
		}).Warn("quiz has correct-answer references that match no option; those questions grade as incorrect")
	}

	score, total := Grade(quiz.Questions, req.Answers)

	sub := domain.Submission{
		ID:         s.submissionID(req),
		QuizID:     quiz.ID,
		PlayerName: req.PlayerName,
		IdentityID: req.IdentityID,
		Score:      score,
		Total:      total,
		CreatedAt:  s.now(),
	}

	result := PlayResult{
		SubmissionID: sub.ID,
		Score:        score,
		Total:        total,
		Percent:      Percent(score, total),
		Recorded:     true,
	}

	if err := s.store.InsertSubmission(ctx, sub); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"quiz_id":       quiz.ID,
			"submission_id": sub.ID,
		}).Error("leaderboard entry was not saved")
		result.Recorded = false
		result.RecordErr = fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return result, nil
}

// submissionID allocates a fresh 128-bit random id, or derives a stable one
// from the idempotency key so retries collapse onto a single row.
func (s *PlayService) submissionID(req SubmitRequest) string {
	if req.IdempotencyKey == "" {
		return s.newID()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("quizzora:"+req.QuizID+":"+req.IdempotencyKey)).String()
}
