package assessment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/predmarket/platform/internal/audit"
	"github.com/predmarket/platform/internal/clock"
	"github.com/predmarket/platform/internal/metrics"
)

// Store is satisfied by *Repository.
type Store interface {
	Insert(ctx context.Context, a *Assessment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Assessment, error)
}

// Engine scores self-assessments and keeps their history.
type Engine struct {
	store Store
	clock clock.Clock
	audit *audit.Recorder
}

// NewEngine creates a new Engine. rec may be nil.
func NewEngine(store Store, clk clock.Clock, rec *audit.Recorder) *Engine {
	return &Engine{
		store: store,
		clock: clk,
		audit: rec,
	}
}

func (e *Engine) Questions() []Question {
	return Questions()
}

// Submit scores answers, stores the result and returns it with the
// questionnaire. Nothing is stored when any answer is invalid.
func (e *Engine) Submit(ctx context.Context, userID uuid.UUID, answers []Answer) (*SubmitResult, error) {
	scored, total, err := scoreAnswers(answers)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating assessment id: %w", err)
	}

	a := &Assessment{
		ID:          id,
		UserID:      userID,
		Answers:     scored,
		TotalScore:  total,
		RiskLevel:   Classify(total),
		CompletedAt: e.clock.Now(),
	}
	if err := e.store.Insert(ctx, a); err != nil {
		return nil, err
	}

	metrics.AssessmentsTotal.WithLabelValues(string(a.RiskLevel)).Inc()
	slog.Debug("assessment: submitted", "user_id", userID, "total_score", total, "risk_level", a.RiskLevel)

	severity := audit.SeverityInfo
	if a.RiskLevel == RiskHigh {
		severity = audit.SeverityWarn
	}
	e.audit.Record(ctx, audit.Entry{
		UserID:       userID,
		EventType:    audit.EventSelfAssessmentSubmitted,
		Severity:     severity,
		ResourceType: audit.ResourceSelfAssessment,
		ResourceID:   a.ID.String(),
		Details:      fmt.Sprintf("total score %d, risk %s", total, a.RiskLevel),
	})

	return &SubmitResult{Assessment: a, Questions: Questions()}, nil
}

// History returns the user's assessments, newest first.
func (e *Engine) History(ctx context.Context, userID uuid.UUID) ([]Assessment, error) {
	return e.store.ListByUser(ctx, userID)
}
