package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBroker implements Broker over Redis streams.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) (*RedisBroker, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisBroker{rdb: rdb}, nil
}

func (b *RedisBroker) EnsureGroup(ctx context.Context, stream, group string) error {
	err := b.rdb.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s on %s: %w", group, stream, err)
	}
	return nil
}

func (b *RedisBroker) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	res, err := b.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read group %s on %s: %w", group, stream, err)
	}

	var msgs []Message
	for _, s := range res {
		for _, m := range s.Messages {
			msgs = append(msgs, Message{ID: m.ID, Body: flattenValues(m.Values)})
		}
	}
	return msgs, nil
}

func (b *RedisBroker) Ack(ctx context.Context, stream, group, id string) error {
	if err := b.rdb.XAck(ctx, stream, group, id).Err(); err != nil {
		return fmt.Errorf("ack %s on %s: %w", id, stream, err)
	}
	return nil
}

// flattenValues turns a stream entry's field map into payload bytes.
// Producers write the trigger under a single field; the value may be
// the raw JSON or a JSON-encoded string of it, both of which the
// envelope decoder handles downstream.
func flattenValues(values map[string]any) []byte {
	if len(values) == 1 {
		for _, v := range values {
			if s, ok := v.(string); ok {
				return []byte(s)
			}
			b, err := json.Marshal(v)
			if err == nil {
				return b
			}
		}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return b
}
