// Package memory - хранилище в памяти процесса для STORAGE_DRIVER=memory и тестов.
// Гарантии те же, что у PostgreSQL-репозиториев: условное закрепление инцидента,
// атомарная смена статуса вместе с записью журнала, строго возрастающее время записей.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	accounts    map[uuid.UUID]*models.Account
	emails      map[string]uuid.UUID
	citizens    map[uuid.UUID]*models.CitizenProfile
	departments map[uuid.UUID]*models.DepartmentProfile
	incidents   map[uuid.UUID]*models.Incident
	updates     map[uuid.UUID][]*models.IncidentUpdate
	contacts    map[string]*models.EmergencyContact
	contactSeq  int64
}

var (
	_ service.IncidentRepository         = (*Store)(nil)
	_ service.AccountRepository          = (*Store)(nil)
	_ service.EmergencyContactRepository = (*Store)(nil)
)

func New() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		accounts:    make(map[uuid.UUID]*models.Account),
		emails:      make(map[string]uuid.UUID),
		citizens:    make(map[uuid.UUID]*models.CitizenProfile),
		departments: make(map[uuid.UUID]*models.DepartmentProfile),
		incidents:   make(map[uuid.UUID]*models.Incident),
		updates:     make(map[uuid.UUID][]*models.IncidentUpdate),
		contacts:    make(map[string]*models.EmergencyContact),
	}
}

// --- accounts ---

func (s *Store) CreateAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[account.Email]; ok {
		return fmt.Errorf("account with email %s: %w", account.Email, service.ErrDuplicateAccount)
	}
	if _, ok := s.accounts[account.ID]; ok {
		return fmt.Errorf("account with id %s: %w", account.ID, service.ErrDuplicateAccount)
	}
	account.CreatedAt = s.now()
	stored := *account
	s.accounts[account.ID] = &stored
	s.emails[account.Email] = account.ID
	return nil
}

func (s *Store) GetAccountByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account with id %s: %w", id, service.ErrNotFound)
	}
	result := *account
	return &result, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	id, ok := s.emails[email]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("account with email %s: %w", email, service.ErrNotFound)
	}
	return s.GetAccountByID(ctx, id)
}

func (s *Store) ConfirmAccount(_ context.Context, tokenHash string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tokenHash == "" {
		return nil, fmt.Errorf("confirmation token: %w", service.ErrNotFound)
	}
	for _, account := range s.accounts {
		if account.ConfirmationTokenHash != tokenHash {
			continue
		}
		confirmedAt := s.now()
		account.Confirmed = true
		account.ConfirmedAt = &confirmedAt
		account.ConfirmationTokenHash = ""
		result := *account
		return &result, nil
	}
	return nil, fmt.Errorf("confirmation token: %w", service.ErrNotFound)
}

func (s *Store) CreateCitizen(_ context.Context, profile *models.CitizenProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[profile.ID]; !ok {
		return fmt.Errorf("account with id %s: %w", profile.ID, service.ErrNotFound)
	}
	if _, ok := s.citizens[profile.ID]; ok {
		return fmt.Errorf("citizen profile %s: %w", profile.ID, service.ErrDuplicateAccount)
	}
	profile.CreatedAt = s.now()
	stored := *profile
	s.citizens[profile.ID] = &stored
	return nil
}

func (s *Store) GetCitizen(_ context.Context, id uuid.UUID) (*models.CitizenProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.citizens[id]
	if !ok {
		return nil, fmt.Errorf("citizen profile %s: %w", id, service.ErrNotFound)
	}
	result := *profile
	return &result, nil
}

func (s *Store) CreateDepartment(_ context.Context, profile *models.DepartmentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[profile.ID]; !ok {
		return fmt.Errorf("account with id %s: %w", profile.ID, service.ErrNotFound)
	}
	if _, ok := s.departments[profile.ID]; ok {
		return fmt.Errorf("department profile %s: %w", profile.ID, service.ErrDuplicateAccount)
	}
	profile.CreatedAt = s.now()
	stored := *profile
	s.departments[profile.ID] = &stored
	return nil
}

func (s *Store) GetDepartment(_ context.Context, id uuid.UUID) (*models.DepartmentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.departments[id]
	if !ok {
		return nil, fmt.Errorf("department profile %s: %w", id, service.ErrNotFound)
	}
	result := *profile
	return &result, nil
}

// --- incidents ---

func (s *Store) Create(_ context.Context, incident *models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	citizen, ok := s.citizens[incident.CitizenID]
	if !ok {
		return fmt.Errorf("%w: citizen profile is not provisioned", service.ErrForbidden)
	}

	now := s.now()
	incident.ID = uuid.New()
	incident.CreatedAt = now
	incident.UpdatedAt = now
	incident.ReporterName = citizen.FullName
	incident.ReporterPhone = citizen.PhoneNumber
	s.incidents[incident.ID] = cloneIncident(incident)
	return nil
}

func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*models.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	incident, ok := s.incidents[id]
	if !ok {
		return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrNotFound)
	}
	return cloneIncident(incident), nil
}

func (s *Store) List(_ context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	s.mu.RLock()
	matched := make([]*models.Incident, 0)
	for _, incident := range s.incidents {
		if filter.CitizenID != nil && incident.CitizenID != *filter.CitizenID {
			continue
		}
		if filter.AssignedDepartmentID != nil && !incident.IsAssignedTo(*filter.AssignedDepartmentID) {
			continue
		}
		if filter.Status != "" && incident.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneIncident(incident))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return strings.Compare(matched[i].ID.String(), matched[j].ID.String()) < 0
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return matched, nil
	}
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []*models.Incident{}, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

// Claim проверяет и устанавливает закрепление под одной блокировкой
func (s *Store) Claim(_ context.Context, incidentID, departmentID uuid.UUID, update *models.IncidentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	incident, ok := s.incidents[incidentID]
	if !ok {
		return fmt.Errorf("incident with id %s: %w", incidentID, service.ErrNotFound)
	}
	if incident.IsAssigned() {
		return fmt.Errorf("incident with id %s: %w", incidentID, service.ErrAlreadyAssigned)
	}
	if _, ok := s.departments[departmentID]; !ok {
		return fmt.Errorf("%w: department profile is not provisioned", service.ErrForbidden)
	}

	assigned := departmentID
	incident.AssignedDepartmentID = &assigned
	incident.UpdatedAt = s.now()
	s.appendLocked(update)
	return nil
}

func (s *Store) UpdateStatus(_ context.Context, incidentID, departmentID uuid.UUID, status models.IncidentStatus, update *models.IncidentUpdate) (*models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	incident, ok := s.incidents[incidentID]
	if !ok {
		return nil, fmt.Errorf("incident with id %s: %w", incidentID, service.ErrNotFound)
	}
	if !incident.IsAssignedTo(departmentID) {
		return nil, fmt.Errorf("incident with id %s is not assigned to department: %w", incidentID, service.ErrForbidden)
	}

	incident.Status = status
	incident.UpdatedAt = s.now()
	if update != nil {
		s.appendLocked(update)
	}
	return cloneIncident(incident), nil
}

func (s *Store) AppendUpdate(_ context.Context, update *models.IncidentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.incidents[update.IncidentID]; !ok {
		return fmt.Errorf("incident with id %s: %w", update.IncidentID, service.ErrNotFound)
	}
	s.appendLocked(update)
	return nil
}

// appendLocked вызывается под s.mu; время записи строго больше предыдущей записи инцидента
func (s *Store) appendLocked(update *models.IncidentUpdate) {
	createdAt := s.now()
	log := s.updates[update.IncidentID]
	if n := len(log); n > 0 {
		if last := log[n-1].CreatedAt; !createdAt.After(last) {
			createdAt = last.Add(time.Microsecond)
		}
	}
	update.ID = uuid.New()
	update.CreatedAt = createdAt
	s.updates[update.IncidentID] = append(log, cloneUpdate(update))
}

func (s *Store) ListUpdates(_ context.Context, incidentID uuid.UUID) ([]*models.IncidentUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.updates[incidentID]
	result := make([]*models.IncidentUpdate, 0, len(log))
	for _, update := range log {
		result = append(result, cloneUpdate(update))
	}
	return result, nil
}

func (s *Store) Stats(_ context.Context, departmentID uuid.UUID) (models.DepartmentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.DepartmentStats{Total: len(s.incidents)}
	for _, incident := range s.incidents {
		if !incident.IsAssignedTo(departmentID) {
			continue
		}
		stats.Assigned++
		switch incident.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusInProgress:
			stats.InProgress++
		}
	}
	return stats, nil
}

// Методы кеша - заглушки

func (s *Store) GetIncidentFromCache(context.Context, uuid.UUID) (*models.Incident, error) {
	return nil, nil
}

func (s *Store) SetIncidentCache(context.Context, *models.Incident) error { return nil }

func (s *Store) InvalidateIncidentCache(context.Context, uuid.UUID) error { return nil }

// --- emergency contacts ---

func (s *Store) ListActiveContacts(context.Context) ([]*models.EmergencyContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contacts := make([]*models.EmergencyContact, 0, len(s.contacts))
	for _, contact := range s.contacts {
		if !contact.IsActive {
			continue
		}
		c := *contact
		contacts = append(contacts, &c)
	}
	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].ServiceName < contacts[j].ServiceName
	})
	return contacts, nil
}

func (s *Store) UpsertContact(_ context.Context, contact *models.EmergencyContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.contacts[contact.ServiceName]; ok {
		contact.ID = existing.ID
	} else {
		s.contactSeq++
		contact.ID = s.contactSeq
	}
	stored := *contact
	s.contacts[contact.ServiceName] = &stored
	return nil
}

func (s *Store) GetContactsFromCache(context.Context) ([]*models.EmergencyContact, error) {
	return nil, nil
}

func (s *Store) SetContactsCache(context.Context, []*models.EmergencyContact) error { return nil }

func (s *Store) InvalidateContactsCache(context.Context) error { return nil }

func cloneIncident(incident *models.Incident) *models.Incident {
	c := *incident
	if incident.AssignedDepartmentID != nil {
		id := *incident.AssignedDepartmentID
		c.AssignedDepartmentID = &id
	}
	return &c
}

func cloneUpdate(update *models.IncidentUpdate) *models.IncidentUpdate {
	c := *update
	if update.StatusChange != nil {
		status := *update.StatusChange
		c.StatusChange = &status
	}
	return &c
}
