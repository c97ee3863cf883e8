package kafka

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"
)

// Handler processes one message. Returning an error stops the consumer before
// the batch is committed, so the batch is redelivered.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error { return f(ctx, msg) }

type fetchClient interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
}

// Consumer polls batches, fans records out to a handler and commits the batch
// once every record has been handled.
type Consumer struct {
	client      fetchClient
	handler     Handler
	concurrency int
	logger      zerolog.Logger
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

func WithConcurrency(n int) ConsumerOption {
	return func(c *Consumer) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithLogger(logger zerolog.Logger) ConsumerOption {
	return func(c *Consumer) { c.logger = logger }
}

// NewConsumer wraps a franz-go group client.
func NewConsumer(client fetchClient, handler Handler, opts ...ConsumerOption) *Consumer {
	c := &Consumer{client: client, handler: handler, concurrency: 1, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Serve runs until ctx ends or a handler fails. It satisfies suture.Service.
func (c *Consumer) Serve(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return fmt.Errorf("kafka consumer: %w", kgo.ErrClientClosed)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, fe := range fetches.Errors() {
			c.logger.Warn().Err(fe.Err).
				Str("topic", fe.Topic).
				Int32("partition", fe.Partition).
				Msg("fetch error")
		}

		records := fetches.Records()
		if len(records) == 0 {
			continue
		}
		if err := c.handleBatch(ctx, records); err != nil {
			return err
		}
		if err := c.client.CommitRecords(ctx, records...); err != nil {
			// The batch is redelivered after a rebalance; handlers are idempotent.
			c.logger.Warn().Err(err).Int("records", len(records)).Msg("commit failed")
		}
	}
}

func (c *Consumer) handleBatch(ctx context.Context, records []*kgo.Record) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, rec := range records {
		msg := fromRecord(rec)
		g.Go(func() error {
			if err := c.handler.Handle(gctx, msg); err != nil {
				return fmt.Errorf("handle %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
			}
			return nil
		})
	}
	return g.Wait()
}
