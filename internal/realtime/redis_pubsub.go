package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// EventsChannel is the Redis channel shared by all instances.
	EventsChannel = "certdesk:events"
	publishTTL    = 5 * time.Second
)

// RedisPubSub implements Bus using Redis pub/sub.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge for seminar events.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPubSub{client: client, logger: logger}
}

var _ Bus = (*RedisPubSub)(nil)

// PublishEvent publishes an event to the shared channel.
func (r *RedisPubSub) PublishEvent(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTTL)
	defer cancel()
	return r.client.Publish(ctx, EventsChannel, body).Err()
}

// Subscribe calls handler for each event on the shared channel until cancel is called.
func (r *RedisPubSub) Subscribe(handler func(Event)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, EventsChannel)
	if _, err = pubsub.Receive(ctx); err != nil {
		cancelCtx()
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.logger.Warn("invalid realtime event on bus", zap.Error(err))
					continue
				}
				handler(ev)
			}
		}
	}()
	return cancelCtx, nil
}
