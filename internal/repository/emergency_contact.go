package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
)

const emergencyContactsCacheKey = "emergency_contacts:active"

type EmergencyContactRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewEmergencyContactRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.EmergencyContactRepository {
	return &EmergencyContactRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// ListActiveContacts возвращает активные службы в алфавитном порядке
func (r *EmergencyContactRepository) ListActiveContacts(ctx context.Context) ([]*models.EmergencyContact, error) {
	query := `
		SELECT id, service_name, phone_number, email, availability, is_active
		FROM emergency_contacts
		WHERE is_active
		ORDER BY service_name;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*models.EmergencyContact, 0)
	for rows.Next() {
		contact := &models.EmergencyContact{}
		if err := rows.Scan(
			&contact.ID,
			&contact.ServiceName,
			&contact.PhoneNumber,
			&contact.Email,
			&contact.Availability,
			&contact.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan emergency contact row: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error contacts iteration: %w", err)
	}
	return contacts, nil
}

// UpsertContact создает службу или обновляет ее по названию
func (r *EmergencyContactRepository) UpsertContact(ctx context.Context, contact *models.EmergencyContact) error {
	query := `
		INSERT INTO emergency_contacts (service_name, phone_number, email, availability, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (service_name) DO UPDATE SET
			phone_number = EXCLUDED.phone_number,
			email = EXCLUDED.email,
			availability = EXCLUDED.availability,
			is_active = EXCLUDED.is_active
		RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		contact.ServiceName,
		contact.PhoneNumber,
		contact.Email,
		contact.Availability,
		contact.IsActive,
	).Scan(&contact.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert emergency contact: %w", err)
	}
	return nil
}

func (r *EmergencyContactRepository) GetContactsFromCache(ctx context.Context) ([]*models.EmergencyContact, error) {
	val, err := r.redisClient.Get(ctx, emergencyContactsCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get emergency contacts from cache: %w", err)
	}

	var contacts []*models.EmergencyContact
	if err := json.Unmarshal(val, &contacts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal emergency contacts from cache: %w", err)
	}
	return contacts, nil
}

func (r *EmergencyContactRepository) SetContactsCache(ctx context.Context, contacts []*models.EmergencyContact) error {
	val, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal emergency contacts for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, emergencyContactsCacheKey, val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set emergency contacts in cache: %w", err)
	}
	return nil
}

func (r *EmergencyContactRepository) InvalidateContactsCache(ctx context.Context) error {
	if err := r.redisClient.Del(ctx, emergencyContactsCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate emergency contacts cache: %w", err)
	}
	return nil
}
