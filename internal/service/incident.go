package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/config"
	"github.com/shenikar/incident_reporting_system/internal/metrics"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/webhook"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ClaimMessage - запись журнала, которую оставляет департамент при взятии инцидента
const ClaimMessage = "Department has taken ownership of this incident"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

//go:generate mockgen -source=incident.go -destination=mocks/mock_incident_service.go -package=mocks

// IncidentService определяет контракт бизнес-логики жизненного цикла инцидента
type IncidentService interface {
	CreateIncident(ctx context.Context, caller models.Caller, incident *models.Incident) error
	GetIncident(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, caller models.Caller, filter models.IncidentFilter) ([]*models.Incident, error)
	ClaimIncident(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.IncidentUpdate, error)
	UpdateStatus(ctx context.Context, caller models.Caller, id uuid.UUID, status models.IncidentStatus, message string) (*models.Incident, *models.IncidentUpdate, error)
	PostMessage(ctx context.Context, caller models.Caller, id uuid.UUID, message string) (*models.IncidentUpdate, error)
	ListUpdates(ctx context.Context, caller models.Caller, id uuid.UUID) ([]*models.IncidentUpdate, error)
	DepartmentDashboard(ctx context.Context, caller models.Caller) (*models.DepartmentDashboard, error)
}

type incidentService struct {
	repo      IncidentRepository
	accounts  AccountRepository
	logger    *logrus.Logger
	cfg       *config.Config
	publisher webhook.WebhookPublisher
	metrics   *metrics.Metrics
	validate  *validator.Validate
}

func NewIncidentService(
	repo IncidentRepository,
	accounts AccountRepository,
	logger *logrus.Logger,
	cfg *config.Config,
	publisher webhook.WebhookPublisher,
	m *metrics.Metrics,
) IncidentService {
	return &incidentService{
		repo:      repo,
		accounts:  accounts,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
		metrics:   m,
		validate:  validator.New(),
	}
}

// CreateIncident создает инцидент от имени гражданина.
// Владелец, статус и закрепление задаются здесь и не берутся из входных данных.
func (s *incidentService) CreateIncident(ctx context.Context, caller models.Caller, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "incident",
		"method":     "CreateIncident",
		"account_id": caller.AccountID,
	})

	// Сообщать об инцидентах может только подтвержденный гражданин
	if !caller.IsCitizen() {
		log.Warn("Caller has no verified citizen identity")
		return ErrUnauthenticated
	}
	if err := s.validateIncident(incident); err != nil {
		log.WithError(err).Warn("Incident validation failed")
		return err
	}

	incident.CitizenID = caller.AccountID
	incident.Status = models.StatusPending
	incident.AssignedDepartmentID = nil

	log.WithField("title", incident.Title).Info("Attempting to create a new incident")
	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	s.metrics.IncIncidentCreated(string(incident.Category), string(incident.Severity))
	s.publish(ctx, log, webhook.WebhookEvent{
		Type:      webhook.EventIncidentCreated,
		AccountID: caller.AccountID,
		Incident:  incident,
	})

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	return nil
}

// GetIncident получает инцидент по ID с учетом прав чтения
func (s *incidentService) GetIncident(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
		"account_id":  caller.AccountID,
	})

	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}

	incident, err := s.loadIncident(ctx, log, id)
	if err != nil {
		return nil, err
	}
	if err := canRead(caller, incident); err != nil {
		log.WithError(err).Warn("Caller is not allowed to read incident")
		return nil, err
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов: гражданину только свои, департаменту все
func (s *incidentService) ListIncidents(ctx context.Context, caller models.Caller, filter models.IncidentFilter) ([]*models.Incident, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError("unknown status %q", filter.Status)
	}

	switch caller.Role {
	case models.RoleCitizen:
		owner := caller.AccountID
		filter.CitizenID = &owner
		filter.AssignedDepartmentID = nil
	case models.RoleDepartment:
	default:
		return nil, ErrForbidden
	}

	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	log := s.logger.WithFields(logrus.Fields{
		"service":    "incident",
		"method":     "ListIncidents",
		"account_id": caller.AccountID,
		"page":       filter.Page,
		"page_size":  filter.PageSize,
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// ClaimIncident закрепляет незакрепленный инцидент за департаментом вызывающего.
// Проверка "еще не закреплен" выполняется атомарно в хранилище.
func (s *incidentService) ClaimIncident(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.IncidentUpdate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "ClaimIncident",
		"incident_id": id,
		"account_id":  caller.AccountID,
	})

	if err := requireRole(caller, models.RoleDepartment); err != nil {
		log.WithError(err).Warn("Caller is not allowed to claim incidents")
		return nil, err
	}

	update := &models.IncidentUpdate{
		IncidentID: id,
		AuthorID:   caller.AccountID,
		AuthorKind: models.AuthorDepartment,
		Message:    ClaimMessage,
	}

	log.Info("Attempting to claim incident")
	if err := s.repo.Claim(ctx, id, caller.AccountID, update); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyAssigned):
			s.metrics.IncClaimAttempt("already_assigned")
			log.Warn("Incident is already assigned to another department")
			return nil, err
		case errors.Is(err, ErrNotFound):
			s.metrics.IncClaimAttempt("not_found")
			log.Warn("Attempted to claim a non-existent incident")
			return nil, err
		}
		s.metrics.IncClaimAttempt("error")
		log.WithError(err).Error("Failed to claim incident in repository")
		return nil, fmt.Errorf("service: could not claim incident: %w", err)
	}

	s.metrics.IncClaimAttempt("claimed")
	s.metrics.IncUpdateAppended(string(update.AuthorKind))
	s.refreshCache(ctx, log, id, nil)
	s.publish(ctx, log, webhook.WebhookEvent{
		Type:      webhook.EventIncidentClaimed,
		AccountID: caller.AccountID,
		Update:    update,
	})

	log.Info("Incident claimed successfully")
	return update, nil
}

// UpdateStatus меняет статус инцидента. Разрешено только закрепленному департаменту.
// Запись в журнал добавляется вместе со сменой статуса, если передано сообщение
// (или всегда, при включенном AuditAllStatusChanges).
func (s *incidentService) UpdateStatus(ctx context.Context, caller models.Caller, id uuid.UUID, status models.IncidentStatus, message string) (*models.Incident, *models.IncidentUpdate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateStatus",
		"incident_id": id,
		"account_id":  caller.AccountID,
		"status":      status,
	})

	if err := requireRole(caller, models.RoleDepartment); err != nil {
		log.WithError(err).Warn("Caller is not allowed to change incident status")
		return nil, nil, err
	}
	if !status.Valid() {
		return nil, nil, validationError("unknown status %q", status)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("Attempted to update a non-existent incident")
			return nil, nil, err
		}
		log.WithError(err).Error("Failed to get incident in repository")
		return nil, nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	if !existing.IsAssignedTo(caller.AccountID) {
		log.Warn("Department is not assigned to incident")
		return nil, nil, ErrForbidden
	}

	var update *models.IncidentUpdate
	message = strings.TrimSpace(message)
	if message == "" && s.cfg.AuditAllStatusChanges {
		message = fmt.Sprintf("Status changed to %s", status)
	}
	if message != "" {
		changed := status
		update = &models.IncidentUpdate{
			IncidentID:   id,
			AuthorID:     caller.AccountID,
			AuthorKind:   models.AuthorDepartment,
			Message:      message,
			StatusChange: &changed,
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, caller.AccountID, status, update)
	if err != nil {
		if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
			log.WithError(err).Warn("Conditional status update rejected")
			return nil, nil, err
		}
		log.WithError(err).Error("Failed to update incident status in repository")
		return nil, nil, fmt.Errorf("service: could not update incident status: %w", err)
	}

	s.metrics.IncStatusTransition(string(status))
	if update != nil {
		s.metrics.IncUpdateAppended(string(update.AuthorKind))
	}
	s.refreshCache(ctx, log, id, updated)
	s.publish(ctx, log, webhook.WebhookEvent{
		Type:      webhook.EventIncidentStatusChanged,
		AccountID: caller.AccountID,
		Incident:  updated,
		Update:    update,
	})

	log.Info("Incident status updated successfully")
	return updated, update, nil
}

// PostMessage добавляет сообщение без смены статуса от владельца или закрепленного департамента
func (s *incidentService) PostMessage(ctx context.Context, caller models.Caller, id uuid.UUID, message string) (*models.IncidentUpdate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "PostMessage",
		"incident_id": id,
		"account_id":  caller.AccountID,
	})

	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, validationError("message is required")
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		log.WithError(err).Error("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	var kind models.AuthorKind
	switch caller.Role {
	case models.RoleCitizen:
		if incident.CitizenID != caller.AccountID {
			return nil, ErrNotFound
		}
		kind = models.AuthorCitizen
	case models.RoleDepartment:
		if !incident.IsAssignedTo(caller.AccountID) {
			log.Warn("Department is not assigned to incident")
			return nil, ErrForbidden
		}
		kind = models.AuthorDepartment
	default:
		return nil, ErrForbidden
	}

	update := &models.IncidentUpdate{
		IncidentID: id,
		AuthorID:   caller.AccountID,
		AuthorKind: kind,
		Message:    message,
	}
	if err := s.repo.AppendUpdate(ctx, update); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		log.WithError(err).Error("Failed to append incident update in repository")
		return nil, fmt.Errorf("service: could not append update: %w", err)
	}

	s.metrics.IncUpdateAppended(string(kind))
	s.publish(ctx, log, webhook.WebhookEvent{
		Type:      webhook.EventIncidentMessagePosted,
		AccountID: caller.AccountID,
		Update:    update,
	})

	log.Info("Message posted successfully")
	return update, nil
}

// ListUpdates возвращает журнал инцидента в порядке добавления
func (s *incidentService) ListUpdates(ctx context.Context, caller models.Caller, id uuid.UUID) ([]*models.IncidentUpdate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "ListUpdates",
		"incident_id": id,
		"account_id":  caller.AccountID,
	})

	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}

	incident, err := s.loadIncident(ctx, log, id)
	if err != nil {
		return nil, err
	}
	if err := canRead(caller, incident); err != nil {
		return nil, err
	}

	updates, err := s.repo.ListUpdates(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to list incident updates from repository")
		return nil, fmt.Errorf("service: could not list updates: %w", err)
	}
	return updates, nil
}

// DepartmentDashboard собирает профиль, закрепленные инциденты и счетчики параллельно
func (s *incidentService) DepartmentDashboard(ctx context.Context, caller models.Caller) (*models.DepartmentDashboard, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "incident",
		"method":     "DepartmentDashboard",
		"account_id": caller.AccountID,
	})

	if err := requireRole(caller, models.RoleDepartment); err != nil {
		return nil, err
	}

	dashboard := &models.DepartmentDashboard{}
	departmentID := caller.AccountID
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := s.accounts.GetDepartment(gctx, departmentID)
		if err != nil {
			return err
		}
		dashboard.Profile = profile
		return nil
	})

	g.Go(func() error {
		assigned, err := s.repo.List(gctx, models.IncidentFilter{
			AssignedDepartmentID: &departmentID,
			Page:                 1,
			PageSize:             maxPageSize,
		})
		if err != nil {
			return err
		}
		dashboard.Assigned = assigned
		return nil
	})

	g.Go(func() error {
		stats, err := s.repo.Stats(gctx, departmentID)
		if err != nil {
			return err
		}
		dashboard.Stats = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("Department profile is not provisioned")
			return nil, err
		}
		log.WithError(err).Error("Failed to build department dashboard")
		return nil, fmt.Errorf("service: could not build dashboard: %w", err)
	}
	return dashboard, nil
}

// loadIncident читает инцидент из кеша, при промахе из бд с записью в кеш
func (s *incidentService) loadIncident(ctx context.Context, log *logrus.Entry, id uuid.UUID) (*models.Incident, error) {
	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		log.WithError(err).Error("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// refreshCache кладет в кэш свежую версию инцидента после записи. fresh == nil - перечитать из бд.
// Если обновить кэш не удалось, ключ удаляется.
func (s *incidentService) refreshCache(ctx context.Context, log *logrus.Entry, id uuid.UUID, fresh *models.Incident) {
	if fresh == nil {
		incident, err := s.repo.GetByID(ctx, id)
		if err != nil {
			log.WithError(err).Warn("Failed to reload incident for cache")
			s.invalidate(ctx, log, id)
			return
		}
		fresh = incident
	}
	if err := s.repo.SetIncidentCache(ctx, fresh); err != nil {
		log.WithError(err).Warn("Failed to refresh incident cache")
		s.invalidate(ctx, log, id)
	}
}

func (s *incidentService) invalidate(ctx context.Context, log *logrus.Entry, id uuid.UUID) {
	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}
}

// publish отправляет событие; ошибка публикации не отменяет уже выполненную операцию
func (s *incidentService) publish(ctx context.Context, log *logrus.Entry, event webhook.WebhookEvent) {
	if s.publisher == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish webhook event")
	}
}

func (s *incidentService) validateIncident(incident *models.Incident) error {
	if incident == nil {
		return validationError("incident is required")
	}
	incident.Title = strings.TrimSpace(incident.Title)
	incident.Description = strings.TrimSpace(incident.Description)
	incident.Location.Address = strings.TrimSpace(incident.Location.Address)
	incident.Location.City = strings.TrimSpace(incident.Location.City)
	incident.Location.State = strings.TrimSpace(incident.Location.State)

	if err := s.validate.Struct(incident); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if !incident.Category.Valid() {
		return validationError("unknown category %q", incident.Category)
	}
	if !incident.Severity.Valid() {
		return validationError("unknown severity %q", incident.Severity)
	}
	return nil
}

// requireAuthenticated отклоняет анонимных и неподтвержденных вызывающих
func requireAuthenticated(caller models.Caller) error {
	if caller.IsZero() || !caller.Confirmed {
		return ErrUnauthenticated
	}
	return nil
}

func requireRole(caller models.Caller, role models.Role) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	switch role {
	case models.RoleCitizen:
		if caller.IsCitizen() {
			return nil
		}
	case models.RoleDepartment:
		if caller.IsDepartment() {
			return nil
		}
	}
	return ErrForbidden
}

// canRead: гражданин видит только свои инциденты (чужие выглядят несуществующими),
// департамент видит все.
func canRead(caller models.Caller, incident *models.Incident) error {
	switch caller.Role {
	case models.RoleCitizen:
		if incident.CitizenID != caller.AccountID {
			return ErrNotFound
		}
		return nil
	case models.RoleDepartment:
		return nil
	}
	return ErrForbidden
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
