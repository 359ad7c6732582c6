package cooloff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/predmarket/platform/internal/audit"
	"github.com/predmarket/platform/internal/clock"
	"github.com/predmarket/platform/internal/database"
	"github.com/predmarket/platform/internal/metrics"
)

// Service manages self-imposed time-out periods. A user has at most one
// active time-out.
type Service struct {
	repo  Repository
	clock clock.Clock
	audit *audit.Recorder
}

func NewService(repo Repository, clk clock.Clock, rec *audit.Recorder) *Service {
	return &Service{repo: repo, clock: clk, audit: rec}
}

// Start begins a time-out of days days from now.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, days int, reason string) (*TimeOut, error) {
	if days < MinDays || days > MaxDays {
		return nil, ErrInvalidDuration
	}

	now := s.clock.Now()
	if err := s.repo.DeactivateExpired(ctx, userID, now); err != nil {
		return nil, err
	}

	t := &TimeOut{
		ID:           uuid.New(),
		UserID:       userID,
		StartAt:      now,
		EndAt:        now.AddDate(0, 0, days),
		DurationDays: days,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if r := strings.TrimSpace(reason); r != "" {
		t.Reason = &r
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	metrics.TimeOutsStartedTotal.Inc()
	slog.Info("time-out started", "user_id", userID, "days", days, "ends_at", t.EndAt)

	s.audit.Record(ctx, audit.Entry{
		UserID:       userID,
		EventType:    audit.EventTimeOutStarted,
		Severity:     audit.SeverityWarn,
		ResourceType: audit.ResourceTimeOut,
		ResourceID:   t.ID.String(),
		Details:      fmt.Sprintf("%d days until %s", days, t.EndAt.Format(time.RFC3339)),
	})

	return t, nil
}

// Active returns the running time-out, or nil when there is none.
func (s *Service) Active(ctx context.Context, userID uuid.UUID) (*TimeOut, error) {
	t, err := s.repo.Active(ctx, userID, s.clock.Now())
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Cancel ends the running time-out early. It returns database.ErrNotFound
// when there is nothing to cancel.
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID) (*TimeOut, error) {
	t, err := s.repo.Cancel(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	slog.Info("time-out cancelled", "user_id", userID, "time_out_id", t.ID)
	s.audit.Record(ctx, audit.Entry{
		UserID:       userID,
		EventType:    audit.EventTimeOutCancelled,
		ResourceType: audit.ResourceTimeOut,
		ResourceID:   t.ID.String(),
	})

	return t, nil
}
