package app_test

import (
	"testing"

	"quizzora/internal/app"
	"quizzora/internal/domain"
)

func fourQuestionQuiz() []domain.Question {
	qs := make([]domain.Question, 0, 4)
	for _, id := range []string{"q1", "q2", "q3", "q4"} {
		qs = append(qs, domain.Question{
			ID: id,
			Options: []domain.Option{
				{ID: id + "-a", Text: "A"},
				{ID: id + "-b", Text: "B"},
			},
			CorrectOptionID: id + "-b",
		})
	}
	return qs
}

func TestGradeCountsCorrectAnswers(t *testing.T) {
	questions := fourQuestionQuiz()
	answers := domain.AnswerSet{
		"q1": "q1-b",
		"q2": "q2-b",
		"q3": "q3-b",
		"q4": "q4-a", // wrong
	}

	score, total := app.Grade(questions, answers)
	if score != 3 || total != 4 {
		t.Fatalf("expected (3, 4), got (%d, %d)", score, total)
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	questions := fourQuestionQuiz()
	answers := domain.AnswerSet{"q1": "q1-b", "q3": "q3-a"}

	s1, t1 := app.Grade(questions, answers)
	s2, t2 := app.Grade(questions, answers)
	if s1 != s2 || t1 != t2 {
		t.Fatalf("repeated grading diverged: (%d,%d) vs (%d,%d)", s1, t1, s2, t2)
	}
}

func TestGradeMissingAnswersCountIncorrect(t *testing.T) {
	questions := fourQuestionQuiz()

	score, total := app.Grade(questions, domain.AnswerSet{})
	if score != 0 || total != 4 {
		t.Fatalf("expected (0, 4), got (%d, %d)", score, total)
	}
}

func TestGradeUnsetCorrectAnswerNeverMatches(t *testing.T) {
	questions := []domain.Question{
		{
			ID:      "q1",
			Options: []domain.Option{{ID: "o1"}, {ID: "o2"}},
			// author never marked an answer
		},
	}

	for _, picked := range []string{"o1", "o2", ""} {
		score, total := app.Grade(questions, domain.AnswerSet{"q1": picked})
		if score != 0 || total != 1 {
			t.Fatalf("answer %q: expected (0, 1), got (%d, %d)", picked, score, total)
		}
	}
}

func TestGradeDanglingCorrectAnswerNeverMatches(t *testing.T) {
	questions := []domain.Question{
		{
			ID:              "q1",
			Options:         []domain.Option{{ID: "o1"}, {ID: "o2"}},
			CorrectOptionID: "o-gone", // corrupted reference
		},
	}

	// Even echoing the dangling id back must not score.
	score, total := app.Grade(questions, domain.AnswerSet{"q1": "o-gone"})
	if score != 0 || total != 1 {
		t.Fatalf("expected (0, 1), got (%d, %d)", score, total)
	}
}

func TestGradeEmptyQuiz(t *testing.T) {
	score, total := app.Grade(nil, domain.AnswerSet{"q1": "o1"})
	if score != 0 || total != 0 {
		t.Fatalf("expected (0, 0), got (%d, %d)", score, total)
	}
	if pct := app.Percent(score, total); pct != 0 {
		t.Fatalf("empty quiz percentage should be 0, got %v", pct)
	}
}

func TestGradeScoreWithinBounds(t *testing.T) {
	questions := fourQuestionQuiz()
	answers := domain.AnswerSet{}
	for _, q := range questions {
		answers = answers.With(q.ID, q.CorrectOptionID)
	}

	score, total := app.Grade(questions, answers)
	if score < 0 || score > total || total != len(questions) {
		t.Fatalf("grade out of bounds: (%d, %d)", score, total)
	}
	if score != 4 {
		t.Fatalf("all-correct run should score 4, got %d", score)
	}
}
