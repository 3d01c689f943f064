package domain

import "time"

// Option is a single answer choice inside a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models an MCQ question. CorrectOptionID is empty when the author
// never marked an answer; grading treats that question as never correct.
type Question struct {
	ID              string   `json:"id"`
	Text            string   `json:"text"`
	ImageRef        string   `json:"image_url,omitempty"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctAnswerId,omitempty"`
}

// HasOption reports whether id matches one of the question's options.
func (q Question) HasOption(id string) bool {
	for _, opt := range q.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// Quiz is the whole authored document. Quizzes are replaced as a unit on
// save; questions and options have no identity outside their parent.
type Quiz struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	CoverImageRef string     `json:"cover_image_url,omitempty"`
	IsPublic      bool       `json:"is_public,omitempty"`
	Questions     []Question `json:"questions"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Normalize repairs documents written by older schema revisions: a nil
// questions field becomes an empty slice, and a missing is_public field has
// already decoded to false (private). Loaders call this on every read.
func (q *Quiz) Normalize() {
	if q.Questions == nil {
		q.Questions = []Question{}
	}
}

// Sanitized returns a deep copy suitable for serving to a player: every
// correct-answer reference is cleared so the answer key never leaves the
// server before grading.
func (q Quiz) Sanitized() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		c := question
		c.CorrectOptionID = ""
		c.Options = append([]Option(nil), question.Options...)
		out.Questions[i] = c
	}
	return out
}

// Submission is one immutable record of a play-through outcome. Total
// snapshots the quiz length at grading time; later quiz edits never change
// historical rows.
type Submission struct {
	ID         string    `json:"id"`
	QuizID     string    `json:"quiz_id"`
	PlayerName string    `json:"player_name"`
	IdentityID string    `json:"identity_id,omitempty"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnswerSet accumulates a player's selections keyed by question id.
type AnswerSet map[string]string

// With returns a copy of the set with the given selection applied, leaving
// the receiver untouched so earlier wizard steps stay reproducible.
func (a AnswerSet) With(questionID, optionID string) AnswerSet {
	out := make(AnswerSet, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	out[questionID] = optionID
	return out
}
