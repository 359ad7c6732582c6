package assessment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/predmarket/platform/internal/database"
)

// Repository handles self_assessments PostgreSQL operations.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends a completed assessment.
func (r *Repository) Insert(ctx context.Context, a *Assessment) error {
	answersJSON, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshaling answers: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO self_assessments (id, user_id, answers, total_score, risk_level, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.UserID, answersJSON, a.TotalScore, string(a.RiskLevel), a.CompletedAt)
	if err != nil {
		return fmt.Errorf("%w: inserting self-assessment: %w", database.ErrStorage, err)
	}
	return nil
}

// ListByUser returns the user's assessments, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Assessment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, answers, total_score, risk_level, completed_at
		 FROM self_assessments
		 WHERE user_id = $1
		 ORDER BY completed_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying self-assessments: %w", database.ErrStorage, err)
	}
	defer rows.Close()

	assessments := []Assessment{}
	for rows.Next() {
		var (
			a           Assessment
			answersJSON []byte
			risk        string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &answersJSON, &a.TotalScore, &risk, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning self-assessment: %w", database.ErrStorage, err)
		}
		if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
			return nil, fmt.Errorf("unmarshaling answers of %s: %w", a.ID, err)
		}
		a.RiskLevel = RiskLevel(risk)
		assessments = append(assessments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating self-assessments: %w", database.ErrStorage, err)
	}

	return assessments, nil
}
