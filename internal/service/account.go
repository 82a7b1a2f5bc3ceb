package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=account.go -destination=mocks/mock_account_service.go -package=mocks

// AccountService определяет контракт создания и чтения профилей
type AccountService interface {
	ProvisionCitizen(ctx context.Context, caller models.Caller, profile *models.CitizenProfile) error
	ProvisionDepartment(ctx context.Context, caller models.Caller, profile *models.DepartmentProfile) error
	GetCitizenProfile(ctx context.Context, caller models.Caller) (*models.CitizenProfile, error)
	GetDepartmentProfile(ctx context.Context, caller models.Caller) (*models.DepartmentProfile, error)
}

type accountService struct {
	repo     AccountRepository
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewAccountService(repo AccountRepository, logger *logrus.Logger) AccountService {
	return &accountService{
		repo:     repo,
		logger:   logger,
		validate: validator.New(),
	}
}

// ProvisionCitizen создает профиль гражданина ровно один раз после подтверждения.
// Идентификатор профиля всегда берется из проверенной личности вызывающего.
func (s *accountService) ProvisionCitizen(ctx context.Context, caller models.Caller, profile *models.CitizenProfile) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "account",
		"method":     "ProvisionCitizen",
		"account_id": caller.AccountID,
	})

	if err := requireConfirmedRole(caller, models.RoleCitizen); err != nil {
		log.WithError(err).Warn("Caller cannot provision citizen profile")
		return err
	}
	if profile == nil {
		return validationError("profile is required")
	}

	trimCitizen(profile)
	if err := s.validate.Struct(profile); err != nil {
		log.WithError(err).Warn("Citizen profile validation failed")
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	profile.ID = caller.AccountID

	if err := s.repo.CreateCitizen(ctx, profile); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			log.Warn("Citizen profile already exists")
			return err
		}
		log.WithError(err).Error("Failed to create citizen profile in repository")
		return fmt.Errorf("service: could not create citizen profile: %w", err)
	}

	log.Info("Citizen profile created successfully")
	return nil
}

// ProvisionDepartment создает профиль департамента ровно один раз после подтверждения
func (s *accountService) ProvisionDepartment(ctx context.Context, caller models.Caller, profile *models.DepartmentProfile) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "account",
		"method":     "ProvisionDepartment",
		"account_id": caller.AccountID,
	})

	if err := requireConfirmedRole(caller, models.RoleDepartment); err != nil {
		log.WithError(err).Warn("Caller cannot provision department profile")
		return err
	}
	if profile == nil {
		return validationError("profile is required")
	}

	trimDepartment(profile)
	if err := s.validate.Struct(profile); err != nil {
		log.WithError(err).Warn("Department profile validation failed")
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if !profile.DepartmentType.Valid() {
		return validationError("unknown department type %q", profile.DepartmentType)
	}
	profile.ID = caller.AccountID

	if err := s.repo.CreateDepartment(ctx, profile); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			log.Warn("Department profile already exists")
			return err
		}
		log.WithError(err).Error("Failed to create department profile in repository")
		return fmt.Errorf("service: could not create department profile: %w", err)
	}

	log.Info("Department profile created successfully")
	return nil
}

func (s *accountService) GetCitizenProfile(ctx context.Context, caller models.Caller) (*models.CitizenProfile, error) {
	if err := requireRole(caller, models.RoleCitizen); err != nil {
		return nil, err
	}
	profile, err := s.repo.GetCitizen(ctx, caller.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: could not get citizen profile: %w", err)
	}
	return profile, nil
}

func (s *accountService) GetDepartmentProfile(ctx context.Context, caller models.Caller) (*models.DepartmentProfile, error) {
	if err := requireRole(caller, models.RoleDepartment); err != nil {
		return nil, err
	}
	profile, err := s.repo.GetDepartment(ctx, caller.AccountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: could not get department profile: %w", err)
	}
	return profile, nil
}

// requireConfirmedRole отличает неподтвержденную учетную запись от анонимного вызова
func requireConfirmedRole(caller models.Caller, role models.Role) error {
	if caller.IsZero() {
		return ErrUnauthenticated
	}
	if !caller.Confirmed {
		return ErrNotConfirmed
	}
	if caller.Role != role {
		return ErrForbidden
	}
	return nil
}

func trimCitizen(p *models.CitizenProfile) {
	p.FullName = strings.TrimSpace(p.FullName)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.Address = strings.TrimSpace(p.Address)
	p.City = strings.TrimSpace(p.City)
	p.State = strings.TrimSpace(p.State)
	p.ZipCode = strings.TrimSpace(p.ZipCode)
	p.IDNumber = strings.TrimSpace(p.IDNumber)
}

func trimDepartment(p *models.DepartmentProfile) {
	p.DepartmentName = strings.TrimSpace(p.DepartmentName)
	p.ContactEmail = strings.TrimSpace(p.ContactEmail)
	p.ContactPhone = strings.TrimSpace(p.ContactPhone)
	p.Address = strings.TrimSpace(p.Address)
	p.City = strings.TrimSpace(p.City)
	p.State = strings.TrimSpace(p.State)
}
