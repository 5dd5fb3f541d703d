// Package stream consumes analysis-trigger events from a durable
// message stream via named consumer groups. Delivery is at-least-once:
// a message stays pending until acknowledged, and one bad message never
// blocks the group.
package stream

import (
	"context"
	"time"
)

// Message is one delivered stream entry. ID is the broker-assigned
// token used for acknowledgment; Body is the decoded payload bytes.
type Message struct {
	ID   string
	Body []byte
}

// Broker is the durable-log contract the consumer loop runs against.
type Broker interface {
	// EnsureGroup creates the consumer group on the stream if it does
	// not exist yet; an already existing group is not an error.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read long-polls for up to block and returns at most count
	// not-yet-delivered messages for this consumer. An empty poll
	// returns a nil slice and nil error.
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// Ack marks the message as processed for the group.
	Ack(ctx context.Context, stream, group, id string) error
}
