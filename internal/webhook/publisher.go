package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_reporting_system/internal/models"
)

const (
	webhookQueueKey = "webhook_events"
)

// EventType - тип доменного события
type EventType string

const (
	EventAccountConfirmationRequested EventType = "account.confirmation_requested"
	EventIncidentCreated              EventType = "incident.created"
	EventIncidentClaimed              EventType = "incident.claimed"
	EventIncidentStatusChanged        EventType = "incident.status_changed"
	EventIncidentMessagePosted        EventType = "incident.message_posted"
)

// WebhookEvent - структура для данных вебхука
type WebhookEvent struct {
	Type              EventType              `json:"type"`
	AccountID         uuid.UUID              `json:"account_id"`
	Email             string                 `json:"email,omitempty"`
	ConfirmationToken string                 `json:"confirmation_token,omitempty"`
	Incident          *models.Incident       `json:"incident,omitempty"`
	Update            *models.IncidentUpdate `json:"update,omitempty"`
	Timestamp         time.Time              `json:"timestamp"`
}

// Key возвращает ключ партиционирования события
func (e WebhookEvent) Key() string {
	if e.Incident != nil {
		return e.Incident.ID.String()
	}
	if e.Update != nil {
		return e.Update.IncidentID.String()
	}
	return e.AccountID.String()
}

// WebhookPublisher - интерфейс для публикации вебхуков
//
//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH в голову списка, воркер забирает с хвоста через BRPOP
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
