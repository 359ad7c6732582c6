package cooloff

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinDays = 1
	MaxDays = 42
)

// TimeOut matches the time_outs table schema.
type TimeOut struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	StartAt      time.Time  `json:"start_at"`
	EndAt        time.Time  `json:"end_at"`
	DurationDays int        `json:"duration_days"`
	Reason       *string    `json:"reason"`
	IsActive     bool       `json:"is_active"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// StartRequest is the body of POST /time-outs.
type StartRequest struct {
	DurationDays int    `json:"duration_days" validate:"required,min=1,max=42"`
	Reason       string `json:"reason" validate:"max=500"`
}
