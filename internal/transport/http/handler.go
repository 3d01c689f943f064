package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"quizzora/internal/app"
	"quizzora/internal/domain"
)

// identityHeader carries the authenticated identity resolved by the external
// identity provider upstream of this service. Absent header means an
// anonymous player.
const identityHeader = "X-Identity-Id"

// Handler exposes the core over JSON REST. It is the only layer that knows
// about HTTP; scores and rankings always come verbatim from the services.
type Handler struct {
	play    *app.PlayService
	boards  *app.LeaderboardService
	imports *app.ImportService
	author  *app.AuthorService
	log     logrus.FieldLogger
	timeout time.Duration
	poll    time.Duration
}

func NewHandler(
	play *app.PlayService,
	boards *app.LeaderboardService,
	imports *app.ImportService,
	author *app.AuthorService,
	log logrus.FieldLogger,
	timeout time.Duration,
	pollInterval time.Duration,
) *Handler {
	return &Handler{
		play:    play,
		boards:  boards,
		imports: imports,
		author:  author,
		log:     log,
		timeout: timeout,
		poll:    pollInterval,
	}
}

// Routes wires every endpoint onto a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/quizzes/{id}", h.getQuizForPlay)
	mux.HandleFunc("POST /api/quizzes/{id}/submissions", h.submit)
	mux.HandleFunc("GET /api/quizzes/{id}/leaderboard", h.leaderboard)
	mux.HandleFunc("POST /api/quizzes/{id}/import", h.importQuiz)

	mux.HandleFunc("POST /api/quizzes", h.createQuiz)
	mux.HandleFunc("PUT /api/quizzes/{id}", h.saveQuiz)
	mux.HandleFunc("DELETE /api/quizzes/{id}", h.deleteQuiz)
	mux.HandleFunc("POST /api/quizzes/{id}/visibility", h.setVisibility)
	mux.HandleFunc("GET /api/quizzes", h.listOwned)
	mux.HandleFunc("GET /api/marketplace", h.listMarketplace)
	return mux
}

type submitRequest struct {
	PlayerName     string            `json:"player_name"`
	Answers        map[string]string `json:"answers"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

type submitResponse struct {
	SubmissionID string  `json:"submission_id"`
	Score        int     `json:"score"`
	Total        int     `json:"total"`
	Percent      float64 `json:"percent"`
	Recorded     bool    `json:"recorded"`
	RecordError  string  `json:"record_error,omitempty"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerName == "" {
		h.writeError(w, http.StatusUnprocessableEntity, "player_name is required")
		return
	}

	result, err := h.play.Submit(ctx, app.SubmitRequest{
		QuizID:         r.PathValue("id"),
		PlayerName:     req.PlayerName,
		IdentityID:     r.Header.Get(identityHeader),
		Answers:        domain.AnswerSet(req.Answers),
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.mapError(w, err)
		return
	}

	resp := submitResponse{
		SubmissionID: result.SubmissionID,
		Score:        result.Score,
		Total:        result.Total,
		Percent:      result.Percent,
		Recorded:     result.Recorded,
	}
	if result.RecordErr != nil {
		// The score stands even though the leaderboard write failed.
		resp.RecordError = "score computed but not saved to the leaderboard"
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type leaderboardEntry struct {
	Rank       int       `json:"rank"`
	ID         string    `json:"id"`
	PlayerName string    `json:"player_name"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

type leaderboardResponse struct {
	QuizID string `json:"quiz_id"`
	// PollSeconds tells viewers how often to re-fetch this endpoint.
	PollSeconds int                `json:"poll_seconds"`
	Entries     []leaderboardEntry `json:"entries"`
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	quizID := r.PathValue("id")
	subs, err := h.boards.Leaderboard(ctx, quizID)
	if err != nil {
		h.mapError(w, err)
		return
	}

	resp := leaderboardResponse{
		QuizID:      quizID,
		PollSeconds: int(h.poll.Seconds()),
		Entries:     make([]leaderboardEntry, 0, len(subs)),
	}
	for i, sub := range subs {
		resp.Entries = append(resp.Entries, leaderboardEntry{
			Rank:       i + 1,
			ID:         sub.ID,
			PlayerName: sub.PlayerName,
			Score:      sub.Score,
			Total:      sub.Total,
			CreatedAt:  sub.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getQuizForPlay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	quiz, err := h.play.QuizForPlay(ctx, r.PathValue("id"))
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) importQuiz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	identity := r.Header.Get(identityHeader)
	if identity == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	quiz, err := h.imports.Import(ctx, r.PathValue("id"), identity)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	identity := r.Header.Get(identityHeader)
	if identity == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.author.Create(ctx, identity, quiz)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) saveQuiz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	identity := r.Header.Get(identityHeader)
	if identity == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quiz.ID = r.PathValue("id")

	saved, err := h.author.Save(ctx, identity, quiz)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	identity := r.Header.Get(identityHeader)
	if identity == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.author.Delete(ctx, identity, r.PathValue("id")); err != nil {
		h.mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setVisibility(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	identity := r.Header.Get(identityHeader)
	if identity == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Public bool `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.author.SetVisibility(ctx, identity, r.PathValue("id"), req.Public); err != nil {
		h.mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOwned(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	identity := r.Header.Get(identityHeader)
	if identity == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	quizzes, err := h.author.ListByOwner(ctx, identity)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) listMarketplace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	quizzes, err := h.author.ListPublic(ctx)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) requestContext(r *http.Request) (ctx context.Context, cancel func()) {
	if h.timeout <= 0 {
		return r.Context(), func() {}
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("write response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// mapError translates the domain taxonomy onto status codes.
func (h *Handler) mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		h.writeError(w, http.StatusNotFound, "quiz not found")
	case errors.Is(err, domain.ErrEmptyQuiz):
		h.writeError(w, http.StatusUnprocessableEntity, "quiz has no questions")
	case errors.Is(err, domain.ErrNotOwner):
		h.writeError(w, http.StatusForbidden, "not the quiz owner")
	case errors.Is(err, domain.ErrPersistence):
		h.log.WithError(err).Error("store failure")
		h.writeError(w, http.StatusBadGateway, "storage unavailable")
	default:
		h.log.WithError(err).Error("unhandled error")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
