package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the responsible-gambling services.
const (
	EventDepositLimitsUpdated    = "deposit_limits_updated"
	EventWagerRecorded           = "wager_recorded"
	EventLimitExceeded           = "limit_exceeded"
	EventSelfAssessmentSubmitted = "self_assessment_submitted"
	EventTimeOutStarted          = "timeout_started"
	EventTimeOutCancelled        = "timeout_cancelled"
)

const (
	SeverityInfo = "info"
	SeverityWarn = "warn"
)

// Resource types referenced by audit entries.
const (
	ResourceDepositLimits  = "deposit_limits"
	ResourceSelfAssessment = "self_assessment"
	ResourceTimeOut        = "time_out"
)

// AuditLog matches the audit_logs table schema.
type AuditLog struct {
	ID           uuid.UUID       `json:"id"`
	OwnerUserID  uuid.UUID       `json:"owner_user_id"`
	EventType    string          `json:"event_type"`
	Severity     string          `json:"severity"`
	ResourceType string          `json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID      `json:"resource_id,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ListParams holds pagination and filtering parameters for audit log queries.
type ListParams struct {
	EventType string
	Severity  string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// DefaultListParams returns sensible defaults.
func DefaultListParams() ListParams {
	return ListParams{
		Page:     1,
		PageSize: 20,
	}
}
