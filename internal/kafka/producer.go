package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ms-registration/internal/config"
	"ms-registration/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher is what the services depend on; Producer and NopPublisher implement it.
type Publisher interface {
	PublishRegistrationCreated(ctx context.Context, evt RegistrationCreated) error
	PublishPaymentStatusChanged(ctx context.Context, evt PaymentStatusChanged) error
	PublishCheckInChanged(ctx context.Context, evt CheckInChanged) error
}

type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
	Logger *logger.Logger
}

func NewProducer(brokers []string, topics config.TopicConfig, l *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Topics: topics, Logger: l}
}

// Publish JSON-encodes value onto topic, keyed so one event's messages stay ordered.
func (p *Producer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	msg, err := buildMessage(topic, key, value)
	if err != nil {
		return err
	}

	p.Logger.LogKafka("PUBLISH", topic, string(msg.Value))

	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func buildMessage(topic, key string, value interface{}) (kafka.Message, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal %s message: %w", topic, err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: raw,
		Time:  time.Now(),
	}, nil
}

func (p *Producer) PublishRegistrationCreated(ctx context.Context, evt RegistrationCreated) error {
	evt.Type = TypeRegistrationCreated
	return p.Publish(ctx, p.Topics.RegistrationCreated, evt.EventCode, evt)
}

func (p *Producer) PublishPaymentStatusChanged(ctx context.Context, evt PaymentStatusChanged) error {
	evt.Type = TypePaymentStatusChanged
	return p.Publish(ctx, p.Topics.PaymentStatusChanged, strconv.FormatInt(evt.PaymentOrderID, 10), evt)
}

func (p *Producer) PublishCheckInChanged(ctx context.Context, evt CheckInChanged) error {
	evt.Type = TypeCheckInChanged
	return p.Publish(ctx, p.Topics.CheckInChanged, strconv.FormatInt(evt.PaymentOrderID, 10), evt)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NopPublisher is used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishRegistrationCreated(context.Context, RegistrationCreated) error {
	return nil
}

func (NopPublisher) PublishPaymentStatusChanged(context.Context, PaymentStatusChanged) error {
	return nil
}

func (NopPublisher) PublishCheckInChanged(context.Context, CheckInChanged) error {
	return nil
}
