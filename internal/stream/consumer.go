package stream

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Handler processes one decoded message. A non-nil error leaves the
// message unacknowledged for redelivery.
type Handler func(ctx context.Context, msg Message) error

const (
	defaultBlock     = 3 * time.Second
	defaultBatch     = 8
	readRetryBackoff = time.Second
)

// Consumer runs one polling loop for one stream/consumer-group pair.
// Messages within a poll batch are handled sequentially; horizontal
// scaling happens by running more consumer instances in the group.
type Consumer struct {
	broker  Broker
	stream  string
	group   string
	name    string
	handler Handler
	logger  *slog.Logger
	block   time.Duration
	batch   int64
}

func NewConsumer(broker Broker, stream, group string, handler Handler, logger *slog.Logger) *Consumer {
	if broker == nil || handler == nil || stream == "" || group == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		broker:  broker,
		stream:  stream,
		group:   group,
		name:    group + "-" + uuid.NewString(),
		handler: handler,
		logger:  logger,
		block:   defaultBlock,
		batch:   defaultBatch,
	}
}

// Run polls until ctx is cancelled. An in-flight message finishes
// before the loop exits; shutdown is never forced mid-dispatch.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.broker.EnsureGroup(ctx, c.stream, c.group); err != nil {
		return err
	}
	c.logger.Info("stream consumer started", "stream", c.stream, "group", c.group, "consumer", c.name)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stream consumer stopped", "stream", c.stream, "group", c.group)
			return nil
		default:
		}

		msgs, err := c.broker.Read(ctx, c.stream, c.group, c.name, c.batch, c.block)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("stream consumer stopped", "stream", c.stream, "group", c.group)
				return nil
			}
			c.logger.Error("stream read failed", "stream", c.stream, "group", c.group, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readRetryBackoff):
			}
			continue
		}

		for _, msg := range msgs {
			c.process(ctx, msg)
		}
	}
}

// process isolates one message: a handler failure is logged with the
// raw body for diagnosis and the message stays pending for redelivery;
// the loop moves on either way.
func (c *Consumer) process(ctx context.Context, msg Message) {
	if err := c.handler(ctx, msg); err != nil {
		c.logger.Error("message processing failed",
			"stream", c.stream, "group", c.group, "id", msg.ID,
			"error", err, "body", string(msg.Body))
		return
	}
	if err := c.broker.Ack(ctx, c.stream, c.group, msg.ID); err != nil {
		c.logger.Error("message ack failed", "stream", c.stream, "group", c.group, "id", msg.ID, "error", err)
	}
}
