package domain

import "errors"

var (
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrEmptyQuiz is returned when an operation needs at least one question.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrNotOwner is returned when a mutating call is made by a non-owner.
	ErrNotOwner = errors.New("caller does not own this quiz")
	// ErrPersistence wraps document store failures so callers can tell a
	// failed write apart from an invalid request.
	ErrPersistence = errors.New("persistence failure")
)
