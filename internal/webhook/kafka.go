package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaWebhookPublisher публикует события в топик Kafka вместо очереди Redis
type KafkaWebhookPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaWebhookPublisher создает клиента franz-go для указанных брокеров
func NewKafkaWebhookPublisher(brokers []string, topic string) (*KafkaWebhookPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &KafkaWebhookPublisher{client: client, topic: topic}, nil
}

// Publish синхронно отправляет событие; ключ записи - инцидент или учетная запись
func (p *KafkaWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Kafka: %w", err)
	}
	return nil
}

// Close дожидается отправки буфера и закрывает клиента
func (p *KafkaWebhookPublisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		p.client.Close()
		return fmt.Errorf("failed to flush kafka client: %w", err)
	}
	p.client.Close()
	return nil
}
