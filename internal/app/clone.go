package app

import (
	"time"

	"quizzora/internal/domain"
)

// importedTitlePrefix marks duplicated quizzes so imported content is never
// silently passed off as original.
const importedTitlePrefix = "(Imported) "

// cloneQuiz deep-copies src into a brand new document owned by newOwnerID.
// Every quiz, question and option id is freshly allocated via newID; the
// correct-answer reference is remapped by structural correspondence, so a
// source reference that resolves to no option comes out unset rather than
// dangling. The copy is always private. src is never touched.
func cloneQuiz(src domain.Quiz, newOwnerID string, newID func() string, now time.Time) domain.Quiz {
	out := domain.Quiz{
		ID:            newID(),
		OwnerID:       newOwnerID,
		Title:         importedTitlePrefix + src.Title,
		CoverImageRef: src.CoverImageRef,
		IsPublic:      false,
		Questions:     make([]domain.Question, 0, len(src.Questions)),
		CreatedAt:     now,
	}

	for _, q := range src.Questions {
		copied := domain.Question{
			ID:       newID(),
			Text:     q.Text,
			ImageRef: q.ImageRef,
			Options:  make([]domain.Option, 0, len(q.Options)),
		}
		for _, opt := range q.Options {
			fresh := domain.Option{ID: newID(), Text: opt.Text}
			if q.CorrectOptionID != "" && opt.ID == q.CorrectOptionID {
				copied.CorrectOptionID = fresh.ID
			}
			copied.Options = append(copied.Options, fresh)
		}
		out.Questions = append(out.Questions, copied)
	}
	return out
}

// danglingAnswers lists question ids whose correct-answer reference does not
// resolve to any option. These are authoring defects worth surfacing.
func danglingAnswers(quiz domain.Quiz) []string {
	var ids []string
	for _, q := range quiz.Questions {
		if q.CorrectOptionID != "" && !q.HasOption(q.CorrectOptionID) {
			ids = append(ids, q.ID)
		}
	}
	return ids
}
