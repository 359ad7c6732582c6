package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/predmarket/platform/internal/api"
	"github.com/predmarket/platform/internal/auth"
)

type logLister interface {
	ListByOwner(ctx context.Context, ownerUserID uuid.UUID, params ListParams) ([]AuditLog, int64, error)
}

// Handler serves the caller's responsible-gambling audit trail.
type Handler struct {
	repo logLister
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns paginated audit logs for the authenticated user.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	params := parseListParams(r)

	logs, total, err := h.repo.ListByOwner(r.Context(), userID, params)
	if err != nil {
		slog.Error("listing audit logs", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrStorage)
		return
	}

	api.JSONPaginated(w, http.StatusOK, logs, total, params.Page, params.PageSize)
}

func parseListParams(r *http.Request) ListParams {
	params := DefaultListParams()
	q := r.URL.Query()

	if et := q.Get("event_type"); et != "" {
		params.EventType = et
	}
	if sev := q.Get("severity"); sev != "" {
		params.Severity = sev
	}
	if p := q.Get("page"); p != "" {
		if page, err := strconv.Atoi(p); err == nil && page > 0 {
			params.Page = page
		}
	}
	if ps := q.Get("page_size"); ps != "" {
		if pageSize, err := strconv.Atoi(ps); err == nil && pageSize > 0 && pageSize <= 100 {
			params.PageSize = pageSize
		}
	}
	if from := q.Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			params.From = &t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			params.To = &t
		}
	}

	return params
}
