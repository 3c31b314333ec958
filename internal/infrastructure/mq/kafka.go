package mq

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

// NewSyncProducer builds a producer that waits for every in-sync replica.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	return sarama.NewSyncProducer(brokers, cfg)
}

// Publisher sends outbox events to Kafka. Each event type maps to
// "<prefix>.<event type>" so consumers can subscribe per event.
type Publisher struct {
	producer sarama.SyncProducer
	prefix   string
}

func NewPublisher(p sarama.SyncProducer, topicPrefix string) *Publisher {
	return &Publisher{producer: p, prefix: topicPrefix}
}

func (p *Publisher) Topic(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *Publisher) Publish(ctx context.Context, eventType, key, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.Topic(eventType),
		Key:   sarama.StringEncoder(key),
		Value: sarama.StringEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Topic, err)
	}
	return nil
}

func (p *Publisher) Close() error { return p.producer.Close() }
