package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inats "github.com/predmarket/platform/internal/nats"
)

type fakeMsg struct {
	jetstream.Msg
	data                 []byte
	acked, naked, termed bool
}

func (m *fakeMsg) Data() []byte { return m.data }
func (m *fakeMsg) Ack() error   { m.acked = true; return nil }
func (m *fakeMsg) Nak() error   { m.naked = true; return nil }
func (m *fakeMsg) Term() error  { m.termed = true; return nil }

type fakeInserter struct {
	logs []*AuditLog
	err  error
}

func (f *fakeInserter) Insert(_ context.Context, log *AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, log)
	return nil
}

func TestEventToLog_ValidResourceID(t *testing.T) {
	assessmentID := uuid.New()
	event := inats.AuditEvent{
		OwnerUserID:  uuid.New(),
		EventType:    EventSelfAssessmentSubmitted,
		Severity:     SeverityWarn,
		ResourceType: ResourceSelfAssessment,
		ResourceID:   assessmentID.String(),
		Details:      "total score 12, risk high",
		Timestamp:    time.Now().UTC(),
	}

	log := eventToLog(event)

	assert.Equal(t, event.OwnerUserID, log.OwnerUserID)
	assert.Equal(t, EventSelfAssessmentSubmitted, log.EventType)
	assert.Equal(t, SeverityWarn, log.Severity)
	assert.Equal(t, ResourceSelfAssessment, log.ResourceType)
	assert.Equal(t, event.Timestamp, log.CreatedAt)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, assessmentID, *log.ResourceID)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "total score 12, risk high", details["message"])
}

func TestEventToLog_InvalidOrEmptyResourceID(t *testing.T) {
	for _, id := range []string{"", "not-a-uuid"} {
		log := eventToLog(inats.AuditEvent{OwnerUserID: uuid.New(), EventType: "x", ResourceID: id})
		assert.Nil(t, log.ResourceID, "resource id %q", id)
	}
}

func TestHandleEvent_PersistsAndAcks(t *testing.T) {
	store := &fakeInserter{}
	c := &Consumer{store: store}

	payload, err := json.Marshal(inats.AuditEvent{
		OwnerUserID: uuid.New(),
		EventType:   EventWagerRecorded,
		Severity:    SeverityInfo,
		Timestamp:   time.Now().UTC(),
	})
	require.NoError(t, err)

	msg := &fakeMsg{data: payload}
	c.handleEvent(context.Background(), msg)

	assert.True(t, msg.acked)
	assert.False(t, msg.naked)
	require.Len(t, store.logs, 1)
	assert.Equal(t, EventWagerRecorded, store.logs[0].EventType)
}

func TestHandleEvent_StoreFailureNaks(t *testing.T) {
	c := &Consumer{store: &fakeInserter{err: errors.New("db down")}}

	payload, _ := json.Marshal(inats.AuditEvent{OwnerUserID: uuid.New(), EventType: EventTimeOutStarted})
	msg := &fakeMsg{data: payload}
	c.handleEvent(context.Background(), msg)

	assert.True(t, msg.naked)
	assert.False(t, msg.acked)
}

func TestHandleEvent_MalformedPayloadTerminates(t *testing.T) {
	store := &fakeInserter{}
	c := &Consumer{store: store}

	msg := &fakeMsg{data: []byte("{not json")}
	c.handleEvent(context.Background(), msg)

	assert.True(t, msg.termed)
	assert.False(t, msg.acked)
	assert.Empty(t, store.logs)
}
