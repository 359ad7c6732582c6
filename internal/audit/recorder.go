package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	inats "github.com/predmarket/platform/internal/nats"
)

// Publisher is satisfied by *nats.Publisher.
type Publisher interface {
	PublishAuditEvent(ctx context.Context, event inats.AuditEvent) error
}

// Entry describes one auditable action.
type Entry struct {
	UserID       uuid.UUID
	EventType    string
	Severity     string
	ResourceType string
	ResourceID   string
	Details      string
}

// Recorder publishes audit entries on a best-effort basis: publish failures
// are logged and never reach the caller. A nil Recorder, or one without a
// publisher, drops entries.
type Recorder struct {
	pub Publisher
}

func NewRecorder(pub Publisher) *Recorder {
	return &Recorder{pub: pub}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.pub == nil {
		return
	}
	if e.Severity == "" {
		e.Severity = SeverityInfo
	}

	event := inats.AuditEvent{
		OwnerUserID:  e.UserID,
		EventType:    e.EventType,
		Severity:     e.Severity,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Details:      e.Details,
		Timestamp:    time.Now().UTC(),
	}
	if err := r.pub.PublishAuditEvent(ctx, event); err != nil {
		slog.Error("publishing audit event", "error", err, "event_type", e.EventType, "user_id", e.UserID)
	}
}
