// Package events emits domain events after order state changes. Delivery is
// best effort: a failed publish is logged and never fails the operation that
// produced it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderPlaced       = "order.placed"
	TypeOrderStatusChange = "seller_order.status_changed"
)

// Event is the envelope written to the stream. The message key is the buyer
// id, so one buyer's events stay ordered.
type Event struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderPlaced is emitted once per successful checkout.
type OrderPlaced struct {
	OrderID     string   `json:"order_id"`
	BuyerID     string   `json:"buyer_id"`
	SellerIDs   []string `json:"seller_ids"`
	ChildOrders []string `json:"child_orders"`
	Total       int64    `json:"total"`
}

// OrderStatusChanged is emitted for every accepted child status transition.
type OrderStatusChanged struct {
	ChildID       string `json:"child_id"`
	ParentOrderID string `json:"parent_order_id"`
	SellerID      string `json:"seller_id"`
	BuyerID       string `json:"buyer_id"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// Publisher is what services see. Publish must not block on broker health.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// Nop discards every event. Used when no brokers are configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

// KafkaPublisher buffers events in an inbox channel and drains it from a
// single goroutine, so callers never wait on the broker.
type KafkaPublisher struct {
	writer *kafka.Writer
	inbox  chan kafka.Message
	done   chan struct{}
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:  make(chan kafka.Message, 256),
		done:   make(chan struct{}),
		logger: logger,
	}
	go p.run()
	return p
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for m := range p.inbox {
		if err := p.writer.WriteMessages(context.Background(), m); err != nil {
			p.logger.Error("publish event failed", "topic", p.writer.Topic, "error", err)
		}
	}
}

func (p *KafkaPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	envelope, err := json.Marshal(Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	})
	if err != nil {
		return err
	}

	msg := kafka.Message{Key: []byte(key), Value: envelope, Time: time.Now()}
	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn("event dropped, inbox full", "type", eventType, "key", key)
	}
	return nil
}

// Close flushes the inbox and shuts the writer down.
func (p *KafkaPublisher) Close() error {
	close(p.inbox)
	<-p.done
	return p.writer.Close()
}
