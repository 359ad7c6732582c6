package assessment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/predmarket/platform/internal/api"
	"github.com/predmarket/platform/internal/auth"
)

type Handler struct {
	svc      *Engine
	validate *validator.Validate
}

func NewHandler(svc *Engine) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, h.svc.Questions())
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("answers must be provided as an array"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	answers := make([]Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = Answer{QuestionID: a.QuestionID, Answer: a.Answer}
	}

	result, err := h.svc.Submit(r.Context(), userID, answers)
	if err != nil {
		if errors.Is(err, ErrInvalidAnswer) {
			api.HandleError(w, api.NewValidationError(err.Error()))
			return
		}
		slog.Error("submitting self-assessment", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStorage)
		return
	}

	api.JSON(w, http.StatusCreated, result)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	assessments, err := h.svc.History(r.Context(), userID)
	if err != nil {
		slog.Error("listing self-assessments", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStorage)
		return
	}

	api.JSON(w, http.StatusOK, HistoryResponse{
		Assessments: assessments,
		Questions:   h.svc.Questions(),
	})
}
