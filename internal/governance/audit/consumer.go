package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/viralscript/viralscript/internal/nats"
)

const consumerName = "audit-persister"

// Inserter persists a single audit row.
type Inserter interface {
	Insert(ctx context.Context, log *AuditLog) error
}

// Consumer listens on the audit subject and persists entries to the database.
type Consumer struct {
	repo        Inserter
	consumerMgr *inats.ConsumerManager
}

func NewConsumer(repo Inserter, consumerMgr *inats.ConsumerManager) *Consumer {
	return &Consumer{
		repo:        repo,
		consumerMgr: consumerMgr,
	}
}

// Start begins the consume loop. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.consumerMgr.EnsureConsumer(ctx, inats.ConsumerOptions{
		Name:          consumerName,
		FilterSubject: inats.SubjectAuditEvent,
	})
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
			c.handle(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// ackable is the part of jetstream.Msg the consumer needs.
type ackable interface {
	Data() []byte
	Ack() error
	Nak() error
	Term() error
}

func (c *Consumer) handle(ctx context.Context, msg ackable) {
	var event inats.AuditEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		// Redelivery cannot fix a malformed payload.
		slog.Error("audit consumer: unmarshaling event", "error", err)
		_ = msg.Term()
		return
	}

	if err := c.repo.Insert(ctx, FromEvent(event)); err != nil {
		slog.Error("audit consumer: persisting audit log", "error", err, "event_type", event.EventType)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()

	slog.Debug("audit consumer: persisted event",
		"event_type", event.EventType,
		"owner", event.OwnerUserID,
		"resource_id", event.ResourceID,
	)
}
