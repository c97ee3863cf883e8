package kafka

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
)

type produceClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Producer publishes messages synchronously to a default topic.
type Producer struct {
	client produceClient
	topic  string
}

// NewProducer wraps a franz-go client.
func NewProducer(client produceClient, topic string) *Producer {
	return &Producer{client: client, topic: topic}
}

// Publish blocks until the broker acknowledges the message or ctx ends. Errors
// are returned unwrapped so callers can classify kerr and kgo values.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	return p.client.ProduceSync(ctx, toRecord(p.topic, msg)).FirstErr()
}
