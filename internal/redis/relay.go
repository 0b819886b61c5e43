package redis

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const relayChannelPrefix = "relay:"

// RelayMessage is a push addressed to a session owned by another instance.
type RelayMessage struct {
	SessionID string          `json:"session_id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
}

// Relay forwards realtime pushes between instances over Redis Pub/Sub.
// Each instance subscribes to its own channel.
type Relay struct {
	client *redis.Client
}

// NewRelay creates a new Relay.
func NewRelay(client *redis.Client) *Relay {
	return &Relay{client: client}
}

// Publish sends msg to the instance that owns the session.
func (r *Relay) Publish(ctx context.Context, instanceID string, msg RelayMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, relayChannelPrefix+instanceID, payload).Err()
}

// Subscribe delivers messages for instanceID to handle until ctx is done.
func (r *Relay) Subscribe(ctx context.Context, instanceID string, handle func(RelayMessage)) error {
	sub := r.client.Subscribe(ctx, relayChannelPrefix+instanceID)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg RelayMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				log.Printf("relay: dropping malformed message: %v", err)
				continue
			}
			handle(msg)
		}
	}
}
