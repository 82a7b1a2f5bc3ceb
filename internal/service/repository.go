package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// IncidentRepository определяет контракт для работы с бд инцидентов и журналом обновлений
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	// Claim атомарно закрепляет инцидент за департаментом, только если он еще не закреплен,
	// и в той же транзакции добавляет запись журнала.
	Claim(ctx context.Context, incidentID, departmentID uuid.UUID, update *models.IncidentUpdate) error
	// UpdateStatus меняет статус при условии, что инцидент закреплен за departmentID;
	// update == nil означает смену статуса без записи в журнал.
	UpdateStatus(ctx context.Context, incidentID, departmentID uuid.UUID, status models.IncidentStatus, update *models.IncidentUpdate) (*models.Incident, error)
	AppendUpdate(ctx context.Context, update *models.IncidentUpdate) error
	ListUpdates(ctx context.Context, incidentID uuid.UUID) ([]*models.IncidentUpdate, error)
	Stats(ctx context.Context, departmentID uuid.UUID) (models.DepartmentStats, error)

	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// AccountRepository определяет контракт для учетных записей и профилей
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	ConfirmAccount(ctx context.Context, tokenHash string) (*models.Account, error)

	CreateCitizen(ctx context.Context, profile *models.CitizenProfile) error
	GetCitizen(ctx context.Context, id uuid.UUID) (*models.CitizenProfile, error)
	CreateDepartment(ctx context.Context, profile *models.DepartmentProfile) error
	GetDepartment(ctx context.Context, id uuid.UUID) (*models.DepartmentProfile, error)
}

// EmergencyContactRepository определяет контракт для справочника экстренных служб
type EmergencyContactRepository interface {
	ListActiveContacts(ctx context.Context) ([]*models.EmergencyContact, error)
	UpsertContact(ctx context.Context, contact *models.EmergencyContact) error

	GetContactsFromCache(ctx context.Context) ([]*models.EmergencyContact, error)
	SetContactsCache(ctx context.Context, contacts []*models.EmergencyContact) error
	InvalidateContactsCache(ctx context.Context) error
}
