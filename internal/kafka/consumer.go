package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ms-registration/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Consumer follows registration.created so every replica can refresh the
// dashboards it serves when a signup lands elsewhere.
type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

func NewConsumer(brokers []string, topic, groupID string, l *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: l}
}

// Start blocks until ctx is done.
func (c *Consumer) Start(ctx context.Context, handler func(context.Context, RegistrationCreated)) {
	c.logger.Info("KAFKA", fmt.Sprintf("Consumer started on %s", c.reader.Config().Topic))

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				c.logger.Info("KAFKA", "Consumer stopped")
				return
			}
			c.logger.Error("KAFKA", fmt.Sprintf("Error reading message: %v", err))
			continue
		}

		evt, err := decodeRegistrationCreated(msg.Value)
		if err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("Skipping message at offset %d: %v", msg.Offset, err))
			continue
		}

		c.logger.LogKafka("RECEIVED", msg.Topic, fmt.Sprintf("order %s for %s", evt.OrderNumber, evt.EventCode))
		handler(ctx, evt)
	}
}

func decodeRegistrationCreated(raw []byte) (RegistrationCreated, error) {
	var evt RegistrationCreated
	if err := json.Unmarshal(raw, &evt); err != nil {
		return evt, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if evt.Type != TypeRegistrationCreated || evt.EventCode == "" {
		return evt, fmt.Errorf("unexpected message type %q", evt.Type)
	}
	return evt, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
