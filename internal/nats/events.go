package nats

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// Stream names.
const (
	StreamEvents = "PREDMARKET_EVENTS"
)

// Subject constants.
const (
	SubjectAuditEvent = "predmarket.events.audit"
)

// AuditEvent is published for responsible-gambling compliance logging.
type AuditEvent struct {
	OwnerUserID  uuid.UUID `json:"owner_user_id"`
	EventType    string    `json:"event_type"`
	Severity     string    `json:"severity"` // info, warn, error
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Details      string    `json:"details"`
	Timestamp    time.Time `json:"timestamp"`
}
