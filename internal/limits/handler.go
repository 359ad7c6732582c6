package limits

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
	svc      *Tracker
	validate *validator.Validate
}

func NewHandler(svc *Tracker) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	status, err := h.svc.GetStatus(r.Context(), userID)
	if err != nil {
		slog.Error("getting deposit limits", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStorage)
		return
	}

	api.JSON(w, http.StatusOK, status)
}

func (h *Handler) SetLimits(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req SetLimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError(ErrInvalidLimit.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(ErrInvalidLimit.Error()))
		return
	}

	status, err := h.svc.SetLimits(r.Context(), userID, LimitUpdate{
		Daily:   req.Daily,
		Weekly:  req.Weekly,
		Monthly: req.Monthly,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidLimit) {
			api.HandleError(w, api.NewValidationError(err.Error()))
			return
		}
		slog.Error("setting deposit limits", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStorage)
		return
	}

	api.JSON(w, http.StatusOK, status)
}

func (h *Handler) RecordBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req RecordBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError(ErrInvalidAmount.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(ErrInvalidAmount.Error()))
		return
	}

	if err := h.svc.RecordUsage(r.Context(), userID, *req.Amount); err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			api.HandleError(w, api.NewValidationError(err.Error()))
			return
		}
		slog.Error("recording bet", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStorage)
		return
	}

	api.JSONMessage(w, http.StatusOK, "bet recorded")
}
