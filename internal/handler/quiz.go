package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/model"
	"github.com/yogendram/career-compass/internal/quiz"
	"github.com/yogendram/career-compass/internal/recommend"
	"github.com/yogendram/career-compass/internal/session"
)

// QuizHandler serves the question bank, its administrative edits, and the
// quiz to recommendation to ledger flow.
type QuizHandler struct {
	sessions *session.Manager
	bank     *quiz.Bank
	pipeline *recommend.Pipeline
	logger   *slog.Logger
}

func NewQuizHandler(sessions *session.Manager, bank *quiz.Bank, pipeline *recommend.Pipeline, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{sessions: sessions, bank: bank, pipeline: pipeline, logger: logger}
}

// HandleQuestions returns the question bank.
//
// HTTP: GET /api/quiz/questions
func (h *QuizHandler) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bank.Questions())
}

type questionRequest struct {
	Question   string   `json:"question" validate:"required"`
	Options    []string `json:"options" validate:"required,min=2,dive,required"`
	Difficulty string   `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
}

func (req questionRequest) toModel() model.QuizQuestion {
	return model.QuizQuestion{
		Question:   req.Question,
		Options:    req.Options,
		Difficulty: req.Difficulty,
	}
}

// HandleAddQuestion appends a question to the bank.
//
// HTTP: POST /api/admin/quiz/questions (behind RequireAdmin)
func (h *QuizHandler) HandleAddQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "question text and at least two non-blank options are required"))
		return
	}

	added, err := h.bank.AddQuestion(r.Context(), req.toModel())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// HandleEditQuestion replaces the question with the path id.
//
// HTTP: PUT /api/admin/quiz/questions/{id} (behind RequireAdmin)
func (h *QuizHandler) HandleEditQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "question id must be an integer"))
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "question text and at least two non-blank options are required"))
		return
	}

	updated, err := h.bank.UpdateQuestion(r.Context(), id, req.toModel())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteQuestion removes the question with the path id.
//
// HTTP: DELETE /api/admin/quiz/questions/{id} (behind RequireAdmin)
func (h *QuizHandler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "question id must be an integer"))
		return
	}

	if err := h.bank.DeleteQuestion(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitRequest struct {
	Answers []model.QuizAnswer `json:"answers" validate:"required,min=1,dive"`
}

type submitResponse struct {
	Recommendation model.CareerRecommendation `json:"recommendation"`
	User           model.User                 `json:"user"`
}

// HandleSubmit runs the recommendation pipeline on the submitted answers
// and records the result.
//
// The ledger write happens strictly after the pipeline resolves, and never
// when it fails: a rate-limited or failed call returns the error for the
// client to offer a retry, leaving the quiz history untouched.
//
// HTTP: POST /api/quiz/submit (behind RequireAuth)
func (h *QuizHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperror.ValidationFailed("answers", "at least one quiz answer is required"))
		return
	}

	rec, err := h.pipeline.Recommend(r.Context(), req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.sessions.RecordQuizResult(r.Context(), model.QuizResult{
		Date:           time.Now(),
		Answers:        req.Answers,
		Recommendation: rec,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "no active session"})
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Recommendation: rec,
		User:           user.Sanitized(),
	})
}
