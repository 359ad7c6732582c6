package limits

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/predmarket/platform/internal/audit"
	"github.com/predmarket/platform/internal/clock"
	"github.com/predmarket/platform/internal/metrics"
)

// Store is satisfied by *Repository.
type Store interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, starts Starts) (*Profile, error)
	ResetWindows(ctx context.Context, userID uuid.UUID, starts Starts) (*Profile, error)
	AddUsage(ctx context.Context, userID uuid.UUID, amount float64, starts Starts) (*Profile, error)
	UpsertLimits(ctx context.Context, userID uuid.UUID, update LimitUpdate, starts Starts) (*Profile, error)
}

// Tracker keeps per-user deposit usage against daily, weekly and monthly
// ceilings. Usage above a ceiling is reported, never rejected.
type Tracker struct {
	store    Store
	clock    clock.Clock
	defaults Defaults
	audit    *audit.Recorder
}

// NewTracker creates a new Tracker. rec may be nil.
func NewTracker(store Store, clk clock.Clock, defaults Defaults, rec *audit.Recorder) *Tracker {
	return &Tracker{
		store:    store,
		clock:    clk,
		defaults: defaults,
		audit:    rec,
	}
}

// GetStatus returns the user's limits and usage, creating the profile on
// first access and persisting any window rollover before answering.
func (t *Tracker) GetStatus(ctx context.Context, userID uuid.UUID) (*Status, error) {
	starts := StartsAt(t.clock.Now())

	p, err := t.store.GetOrCreate(ctx, userID, starts)
	if err != nil {
		return nil, err
	}

	if _, rolled := rolloverTo(*p, starts); len(rolled) > 0 {
		p, err = t.store.ResetWindows(ctx, userID, starts)
		if err != nil {
			return nil, err
		}
		for _, w := range rolled {
			metrics.WindowRolloversTotal.WithLabelValues(string(w)).Inc()
		}
		slog.Debug("limits: windows rolled over", "user_id", userID, "windows", rolled)
	}

	status := statusOf(*p, t.defaults)
	return &status, nil
}

// RecordUsage accounts amount against all three windows.
func (t *Tracker) RecordUsage(ctx context.Context, userID uuid.UUID, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidAmount
	}

	p, err := t.store.AddUsage(ctx, userID, amount, StartsAt(t.clock.Now()))
	if err != nil {
		return err
	}

	metrics.WagersRecordedTotal.Inc()
	metrics.WagerAmountTotal.Add(amount)

	t.audit.Record(ctx, audit.Entry{
		UserID:       userID,
		EventType:    audit.EventWagerRecorded,
		ResourceType: audit.ResourceDepositLimits,
		ResourceID:   userID.String(),
		Details:      fmt.Sprintf("amount %.2f", amount),
	})

	t.reportExceeded(ctx, userID, *p)
	return nil
}

func (t *Tracker) reportExceeded(ctx context.Context, userID uuid.UUID, p Profile) {
	status := statusOf(p, t.defaults)

	var over []string
	for _, w := range Windows {
		ws := windowOf(status, w)
		if ws.Used > ws.Limit {
			metrics.LimitExceededTotal.WithLabelValues(string(w)).Inc()
			over = append(over, fmt.Sprintf("%s %.2f/%.2f", w, ws.Used, ws.Limit))
		}
	}
	if len(over) == 0 {
		return
	}

	slog.Warn("limits: usage above ceiling", "user_id", userID, "windows", over)
	t.audit.Record(ctx, audit.Entry{
		UserID:       userID,
		EventType:    audit.EventLimitExceeded,
		Severity:     audit.SeverityWarn,
		ResourceType: audit.ResourceDepositLimits,
		ResourceID:   userID.String(),
		Details:      strings.Join(over, ", "),
	})
}

// SetLimits replaces the provided ceilings and returns the resulting status.
// Usage counters are never modified.
func (t *Tracker) SetLimits(ctx context.Context, userID uuid.UUID, update LimitUpdate) (*Status, error) {
	for _, v := range []*float64{update.Daily, update.Weekly, update.Monthly} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0) {
			return nil, ErrInvalidLimit
		}
	}

	now := t.clock.Now()
	p, err := t.store.UpsertLimits(ctx, userID, update, StartsAt(now))
	if err != nil {
		return nil, err
	}

	t.audit.Record(ctx, audit.Entry{
		UserID:       userID,
		EventType:    audit.EventDepositLimitsUpdated,
		ResourceType: audit.ResourceDepositLimits,
		ResourceID:   userID.String(),
		Details:      describeUpdate(update),
	})

	// Stale windows display as empty; the reset itself is persisted by the
	// next GetStatus or RecordUsage.
	rolled, _ := Rollover(*p, now)
	status := statusOf(rolled, t.defaults)
	return &status, nil
}

func windowOf(s Status, w Window) WindowStatus {
	switch w {
	case Daily:
		return s.Daily
	case Weekly:
		return s.Weekly
	default:
		return s.Monthly
	}
}

func describeUpdate(u LimitUpdate) string {
	var parts []string
	for _, f := range []struct {
		name string
		v    *float64
	}{{"daily", u.Daily}, {"weekly", u.Weekly}, {"monthly", u.Monthly}} {
		if f.v != nil {
			parts = append(parts, fmt.Sprintf("%s=%.2f", f.name, *f.v))
		}
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, " ")
}
