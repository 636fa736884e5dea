package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Redelivery defaults for durable consumers.
const (
	DefaultAckWait    = 30 * time.Second
	DefaultMaxDeliver = 5
)

// ConsumerOptions describes a durable pull consumer on the events stream.
type ConsumerOptions struct {
	Name          string
	FilterSubject string
	AckWait       time.Duration
	MaxDeliver    int
}

// ConsumerManager creates and looks up durable consumers.
type ConsumerManager struct {
	js     jetstream.JetStream
	stream string
}

func NewConsumerManager(js jetstream.JetStream) *ConsumerManager {
	return &ConsumerManager{js: js, stream: StreamEvents}
}

// EnsureConsumer creates the consumer, or updates it in place when its
// configuration changed between deploys.
func (cm *ConsumerManager) EnsureConsumer(ctx context.Context, opts ConsumerOptions) (jetstream.Consumer, error) {
	if opts.AckWait <= 0 {
		opts.AckWait = DefaultAckWait
	}
	if opts.MaxDeliver == 0 {
		opts.MaxDeliver = DefaultMaxDeliver
	}

	consumer, err := cm.js.CreateOrUpdateConsumer(ctx, cm.stream, jetstream.ConsumerConfig{
		Durable:       opts.Name,
		FilterSubject: opts.FilterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       opts.AckWait,
		MaxDeliver:    opts.MaxDeliver,
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring consumer %s on %s: %w", opts.Name, cm.stream, err)
	}
	return consumer, nil
}
