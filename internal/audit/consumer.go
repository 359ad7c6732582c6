package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/predmarket/platform/internal/metrics"
	inats "github.com/predmarket/platform/internal/nats"
)

const consumerName = "audit-persister"

// ConsumerSource is satisfied by *nats.Client.
type ConsumerSource interface {
	EnsureConsumer(ctx context.Context, stream, name, filterSubject string) (jetstream.Consumer, error)
}

type logInserter interface {
	Insert(ctx context.Context, log *AuditLog) error
}

// Consumer listens on the audit event NATS subject and persists entries to the database.
type Consumer struct {
	store  logInserter
	source ConsumerSource
}

// NewConsumer creates a new audit event Consumer.
func NewConsumer(repo *Repository, source ConsumerSource) *Consumer {
	return &Consumer{
		store:  repo,
		source: source,
	}
}

// Start begins the consume loop. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.source.EnsureConsumer(ctx, inats.StreamEvents, consumerName, inats.SubjectAuditEvent)
	if err != nil {
		return err
	}

	slog.Info("audit consumer started", "consumer", consumerName)

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("audit consumer: fetching events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleEvent(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) handleEvent(ctx context.Context, msg jetstream.Msg) {
	var event inats.AuditEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.Error("audit consumer: unmarshaling event", "error", err)
		metrics.AuditEventsPersistedTotal.WithLabelValues("malformed").Inc()
		// Redelivery cannot fix a malformed payload.
		_ = msg.Term()
		return
	}

	if err := c.store.Insert(ctx, eventToLog(event)); err != nil {
		slog.Error("audit consumer: persisting audit log", "error", err, "event_type", event.EventType)
		metrics.AuditEventsPersistedTotal.WithLabelValues("failed").Inc()
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()
	metrics.AuditEventsPersistedTotal.WithLabelValues("ok").Inc()

	slog.Debug("audit consumer: persisted event",
		"event_type", event.EventType,
		"owner", event.OwnerUserID,
		"resource_id", event.ResourceID,
	)
}

// eventToLog converts a bus event into its table row. Non-UUID resource ids
// are dropped and details are stored as {"message": ...}.
func eventToLog(event inats.AuditEvent) *AuditLog {
	log := &AuditLog{
		ID:           uuid.New(),
		OwnerUserID:  event.OwnerUserID,
		EventType:    event.EventType,
		Severity:     event.Severity,
		ResourceType: event.ResourceType,
		CreatedAt:    event.Timestamp,
	}

	if event.ResourceID != "" {
		if parsed, err := uuid.Parse(event.ResourceID); err == nil {
			log.ResourceID = &parsed
		}
	}

	detailsMap := map[string]string{"message": event.Details}
	if data, err := json.Marshal(detailsMap); err == nil {
		log.Details = data
	}

	return log
}
