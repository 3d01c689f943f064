package app

import "quizzora/internal/domain"

// Grade scores a set of answers against the authoritative questions. A
// question counts toward score only when the player's selection equals a
// correct-answer reference that actually resolves to one of the question's
// options; an unset or dangling reference can never match. Missing answers
// count as incorrect. Pure and deterministic.
func Grade(questions []domain.Question, answers domain.AnswerSet) (score, total int) {
	total = len(questions)
	for _, q := range questions {
		if q.CorrectOptionID == "" || !q.HasOption(q.CorrectOptionID) {
			continue
		}
		if answers[q.ID] == q.CorrectOptionID {
			score++
		}
	}
	return score, total
}

// Percent converts a grade to a 0-100 percentage; an empty quiz grades to 0.
func Percent(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}
