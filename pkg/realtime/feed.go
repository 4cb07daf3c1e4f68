// Package realtime delivers row-level item change events scoped to a single
// order, so concurrent viewers converge without polling. The transport is
// redis pub/sub with one channel per order id; tests use MemoryFeed.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/redis"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ItemEvent is one change to an item row. For deletes only Item.ID is
// meaningful.
type ItemEvent struct {
	Type EventType        `json:"type"`
	Item models.OrderItem `json:"item"`
}

// Feed publishes and subscribes item change events per order.
type Feed interface {
	Publish(ctx context.Context, orderID uuid.UUID, ev ItemEvent) error
	// Subscribe returns a receive channel and a cancel func. The channel is
	// closed when the context ends or cancel is called.
	Subscribe(ctx context.Context, orderID uuid.UUID) (<-chan ItemEvent, func(), error)
}

// RedisFeed routes events over redis pub/sub.
type RedisFeed struct {
	client *redis.Client
	logg   *logger.Logger
}

func NewRedisFeed(client *redis.Client, logg *logger.Logger) *RedisFeed {
	return &RedisFeed{client: client, logg: logg}
}

func channelFor(orderID uuid.UUID) string {
	return redis.Key("items", orderID.String())
}

func (f *RedisFeed) Publish(ctx context.Context, orderID uuid.UUID, ev ItemEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding item event: %w", err)
	}
	return f.client.Publish(ctx, channelFor(orderID), payload)
}

func (f *RedisFeed) Subscribe(ctx context.Context, orderID uuid.UUID) (<-chan ItemEvent, func(), error) {
	sub := f.client.Subscribe(ctx, channelFor(orderID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("realtime subscription handshake: %w", err)
	}

	out := make(chan ItemEvent, 32)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev ItemEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					if f.logg != nil {
						f.logg.Error(ctx, "dropping malformed item event", err)
					}
					continue
				}
				out <- ev
			}
		}
	}()

	cancel := func() {
		close(done)
		_ = sub.Close()
	}
	return out, cancel, nil
}
