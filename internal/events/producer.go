// Package events publishes cart lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"

	"github.com/ecopack/cartengine/internal/domain/cart"
	"github.com/ecopack/cartengine/internal/domain/money"
	"github.com/ecopack/cartengine/internal/domain/sustainability"
)

// CartUpdated is the payload emitted after every committed cart mutation.
type CartUpdated struct {
	CartID    string                `json:"cartId"`
	Currency  string                `json:"currency"`
	ItemCount int                   `json:"itemCount"`
	Subtotal  money.Money           `json:"subtotal"`
	Total     money.Money           `json:"total"`
	Impact    sustainability.Impact `json:"sustainabilityImpact"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// Producer writes cart events to a single Kafka topic, keyed by cart ID so
// consumers see updates for one cart in order.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a Producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// CartUpdated implements cart.EventPublisher.
func (p *Producer) CartUpdated(ctx context.Context, c *cart.Cart) error {
	event := CartUpdated{
		CartID:    c.ID,
		Currency:  c.Currency,
		ItemCount: c.TotalQuantity(),
		Subtotal:  c.Subtotal,
		Total:     c.Total,
		Impact:    c.Impact,
		UpdatedAt: c.UpdatedAt,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(c.ID),
		Value: data,
		Time:  c.UpdatedAt,
	})
}

// Close flushes buffered messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
