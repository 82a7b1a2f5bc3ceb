package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:generate mockgen -source=emergency.go -destination=mocks/mock_emergency_service.go -package=mocks

// EmergencyContactService определяет контракт справочника экстренных служб
type EmergencyContactService interface {
	ListActive(ctx context.Context) ([]*models.EmergencyContact, error)
	Seed(ctx context.Context, path string) (int, error)
}

type emergencyContactService struct {
	repo   EmergencyContactRepository
	logger *logrus.Logger
}

func NewEmergencyContactService(repo EmergencyContactRepository, logger *logrus.Logger) EmergencyContactService {
	return &emergencyContactService{repo: repo, logger: logger}
}

// seedFile - формат YAML-файла со списком служб
type seedFile struct {
	Contacts []*models.EmergencyContact `yaml:"contacts"`
}

// ListActive возвращает активные службы, сначала из кеша
func (s *emergencyContactService) ListActive(ctx context.Context) ([]*models.EmergencyContact, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "emergency_contacts",
		"method":  "ListActive",
	})

	cached, err := s.repo.GetContactsFromCache(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read contacts from cache")
	}
	if cached != nil {
		return cached, nil
	}

	contacts, err := s.repo.ListActiveContacts(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list emergency contacts from repository")
		return nil, fmt.Errorf("service: could not list emergency contacts: %w", err)
	}
	if err := s.repo.SetContactsCache(ctx, contacts); err != nil {
		log.WithError(err).Warn("Failed to cache emergency contacts")
	}
	return contacts, nil
}

// Seed загружает службы из YAML-файла и обновляет их по названию
func (s *emergencyContactService) Seed(ctx context.Context, path string) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "emergency_contacts",
		"method":  "Seed",
		"path":    path,
	})

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("service: could not read contacts file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("service: could not parse contacts file: %w", err)
	}

	for i, contact := range file.Contacts {
		if contact == nil {
			continue
		}
		contact.ServiceName = strings.TrimSpace(contact.ServiceName)
		contact.PhoneNumber = strings.TrimSpace(contact.PhoneNumber)
		if contact.ServiceName == "" || contact.PhoneNumber == "" {
			return i, validationError("contact #%d: service_name and phone_number are required", i+1)
		}
		if err := s.repo.UpsertContact(ctx, contact); err != nil {
			return i, fmt.Errorf("service: could not upsert contact %q: %w", contact.ServiceName, err)
		}
	}

	if err := s.repo.InvalidateContactsCache(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate contacts cache")
	}

	log.WithField("count", len(file.Contacts)).Info("Emergency contacts seeded")
	return len(file.Contacts), nil
}
