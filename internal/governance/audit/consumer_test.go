package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inats "github.com/viralscript/viralscript/internal/nats"
)

func TestAuditEventDeserialization(t *testing.T) {
	ownerID := uuid.New()
	requestID := uuid.New()

	event := inats.AuditEvent{
		OwnerUserID:  ownerID,
		EventType:    "generation_completed",
		Severity:     "info",
		ResourceType: "generation",
		ResourceID:   requestID.String(),
		Details:      "5 scripts generated",
		Timestamp:    time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded inats.AuditEvent
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, ownerID, decoded.OwnerUserID)
	assert.Equal(t, "generation_completed", decoded.EventType)
	assert.Equal(t, requestID.String(), decoded.ResourceID)
	assert.Equal(t, "5 scripts generated", decoded.Details)
}

func TestFromEvent_ValidResourceID(t *testing.T) {
	requestID := uuid.New()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := inats.AuditEvent{
		OwnerUserID:  uuid.New(),
		EventType:    "generation_failed",
		Severity:     "error",
		ResourceType: "generation",
		ResourceID:   requestID.String(),
		Details:      "transcript unavailable",
		IPAddress:    "10.0.0.1",
		Timestamp:    ts,
	}

	log := FromEvent(event)

	assert.Equal(t, event.OwnerUserID, log.OwnerUserID)
	assert.Equal(t, "generation_failed", log.EventType)
	assert.Equal(t, "error", log.Severity)
	assert.Equal(t, "10.0.0.1", log.IPAddress)
	assert.Equal(t, ts, log.CreatedAt)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, requestID, *log.ResourceID)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "transcript unavailable", details["message"])
}

func TestFromEvent_InvalidResourceID(t *testing.T) {
	log := FromEvent(inats.AuditEvent{OwnerUserID: uuid.New(), EventType: "x", ResourceID: "not-a-uuid"})
	assert.Nil(t, log.ResourceID)
}

func TestFromEvent_EmptyResourceID(t *testing.T) {
	log := FromEvent(inats.AuditEvent{OwnerUserID: uuid.New(), EventType: "quota_exceeded"})
	assert.Nil(t, log.ResourceID)
}

type stubInserter struct {
	logs []*AuditLog
	err  error
}

func (s *stubInserter) Insert(_ context.Context, log *AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.logs = append(s.logs, log)
	return nil
}

type stubMsg struct {
	data                 []byte
	acked, naked, termed bool
}

func (m *stubMsg) Data() []byte { return m.data }
func (m *stubMsg) Ack() error   { m.acked = true; return nil }
func (m *stubMsg) Nak() error   { m.naked = true; return nil }
func (m *stubMsg) Term() error  { m.termed = true; return nil }

func TestConsumerHandle(t *testing.T) {
	payload, err := json.Marshal(inats.AuditEvent{OwnerUserID: uuid.New(), EventType: "quota_exceeded", Severity: "warn"})
	require.NoError(t, err)

	t.Run("persists and acks", func(t *testing.T) {
		repo := &stubInserter{}
		msg := &stubMsg{data: payload}
		NewConsumer(repo, nil).handle(context.Background(), msg)

		assert.True(t, msg.acked)
		require.Len(t, repo.logs, 1)
		assert.Equal(t, "quota_exceeded", repo.logs[0].EventType)
	})

	t.Run("naks on storage failure", func(t *testing.T) {
		msg := &stubMsg{data: payload}
		NewConsumer(&stubInserter{err: errors.New("db down")}, nil).handle(context.Background(), msg)

		assert.True(t, msg.naked)
		assert.False(t, msg.acked)
	})

	t.Run("terminates malformed payloads", func(t *testing.T) {
		repo := &stubInserter{}
		msg := &stubMsg{data: []byte("{not json")}
		NewConsumer(repo, nil).handle(context.Background(), msg)

		assert.True(t, msg.termed)
		assert.Empty(t, repo.logs)
	})
}
