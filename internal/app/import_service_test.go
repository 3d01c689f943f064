package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quizzora/internal/app"
	"quizzora/internal/domain"
	"quizzora/internal/infra/memory"
)

func TestImportCreatesPrivateCopy(t *testing.T) {
	ctx := context.Background()
	src := playableQuiz()
	src.IsPublic = true
	store := seedStore(t, src)

	n := 0
	service := app.NewImportService(store, testLogger()).WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("import-%d", n)
	})

	dup, err := service.Import(ctx, "quiz-1", "owner-b")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if dup.ID != "import-1" {
		t.Fatalf("expected injected id generator to be used, got %q", dup.ID)
	}
	if dup.IsPublic {
		t.Fatalf("imported quiz must be private")
	}
	if dup.OwnerID != "owner-b" {
		t.Fatalf("unexpected owner %q", dup.OwnerID)
	}

	stored, err := store.GetQuiz(ctx, dup.ID)
	if err != nil {
		t.Fatalf("copy was not persisted: %v", err)
	}
	if len(stored.Questions) != len(src.Questions) {
		t.Fatalf("copy lost questions: %d vs %d", len(stored.Questions), len(src.Questions))
	}

	original, err := store.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("source disappeared: %v", err)
	}
	if !original.IsPublic || original.OwnerID != "owner-a" {
		t.Fatalf("import mutated the source: %+v", original)
	}
}

func TestImportCorruptedSourceSucceeds(t *testing.T) {
	// Scenario: source question 2 references a non-existent option id.
	src := playableQuiz()
	src.Questions[1].CorrectOptionID = "o-nope"
	store := seedStore(t, src)
	service := app.NewImportService(store, testLogger())

	dup, err := service.Import(context.Background(), "quiz-1", "owner-b")
	if err != nil {
		t.Fatalf("import should tolerate source corruption: %v", err)
	}
	if got := dup.Questions[1].CorrectOptionID; got != "" {
		t.Fatalf("corrupted reference propagated as %q", got)
	}
	if dup.Questions[0].CorrectOptionID == "" || !dup.Questions[0].HasOption(dup.Questions[0].CorrectOptionID) {
		t.Fatalf("healthy question mangled: %+v", dup.Questions[0])
	}
}

func TestImportUnknownSource(t *testing.T) {
	service := app.NewImportService(memory.NewStore(), testLogger())
	_, err := service.Import(context.Background(), "missing", "owner-b")
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestImportEmptySourceCreatesNothing(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t, domain.Quiz{ID: "hollow", OwnerID: "owner-a", Title: "Empty"})
	service := app.NewImportService(store, testLogger())

	_, err := service.Import(ctx, "hollow", "owner-b")
	if !errors.Is(err, domain.ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz, got %v", err)
	}

	quizzes, err := store.ListQuizzesByOwner(ctx, "owner-b")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 0 {
		t.Fatalf("failed import left a partial quiz behind: %+v", quizzes)
	}
}
