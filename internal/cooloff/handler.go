package cooloff

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/predmarket/platform/internal/api"
	"github.com/predmarket/platform/internal/auth"
	"github.com/predmarket/platform/internal/database"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(ErrInvalidDuration.Error()))
		return
	}

	t, err := h.svc.Start(r.Context(), userID, req.DurationDays, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDuration):
			api.HandleError(w, api.NewValidationError(err.Error()))
		case errors.Is(err, ErrAlreadyActive):
			api.HandleError(w, api.NewConflictError(err.Error()))
		default:
			slog.Error("starting time-out", "error", err, "user_id", userID)
			api.HandleError(w, api.ErrStorage)
		}
		return
	}

	api.JSON(w, http.StatusCreated, t)
}

func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	t, err := h.svc.Active(r.Context(), userID)
	if err != nil {
		slog.Error("getting active time-out", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStorage)
		return
	}
	if t == nil {
		api.HandleError(w, api.NewNotFoundError("no active time-out"))
		return
	}

	api.JSON(w, http.StatusOK, t)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	t, err := h.svc.Cancel(r.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.HandleError(w, api.NewNotFoundError("no active time-out"))
			return
		}
		slog.Error("cancelling time-out", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStorage)
		return
	}

	api.JSON(w, http.StatusOK, t)
}
