package stream

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// RideEvent is one ride lifecycle change as published to the event stream.
type RideEvent struct {
	Type          string    `json:"type"`
	RideID        string    `json:"ride_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Actor         string    `json:"actor,omitempty"`
	At            time.Time `json:"at"`
}

// Publisher writes ride events to Kafka, keyed by ride so one ride's events
// land in a single partition in order.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher. With no brokers it returns a publisher
// whose Publish is a no-op.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Publish writes the event. Failures are logged and returned; callers
// treat them as best-effort.
func (p *Publisher) Publish(ctx context.Context, event RideEvent) error {
	if p.writer == nil {
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RideID),
		Value: value,
		Time:  event.At,
	})
	if err != nil {
		log.Printf("stream: failed to publish %s for ride %s: %v", event.Type, event.RideID, err)
	}
	return err
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
