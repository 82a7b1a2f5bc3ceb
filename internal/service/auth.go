package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/identity"
	"github.com/shenikar/incident_reporting_system/internal/metrics"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=auth.go -destination=mocks/mock_auth_service.go -package=mocks

// AuthService - локальный провайдер идентификации
type AuthService interface {
	SignUp(ctx context.Context, email, password string, role models.Role) (uuid.UUID, error)
	ConfirmAccount(ctx context.Context, token string) error
	SignIn(ctx context.Context, email, password string) (string, error)
	CurrentAccount(ctx context.Context, accountID uuid.UUID) (models.Caller, error)
}

type authService struct {
	repo      AccountRepository
	tokens    *identity.TokenService
	logger    *logrus.Logger
	publisher webhook.WebhookPublisher
	metrics   *metrics.Metrics
}

func NewAuthService(repo AccountRepository, tokens *identity.TokenService, logger *logrus.Logger, publisher webhook.WebhookPublisher, m *metrics.Metrics) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		logger:    logger,
		publisher: publisher,
		metrics:   m,
	}
}

// SignUp регистрирует учетную запись и публикует токен подтверждения через вебхук
func (s *authService) SignUp(ctx context.Context, email, password string, role models.Role) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "SignUp",
		"role":    role,
	})

	if _, err := mail.ParseAddress(email); err != nil {
		return uuid.Nil, validationError("invalid email address")
	}
	if !role.Valid() {
		return uuid.Nil, validationError("unknown role %q", role)
	}

	hash, err := identity.HashPassword(password)
	if err != nil {
		if errors.Is(err, identity.ErrPasswordTooShort) || errors.Is(err, identity.ErrPasswordTooLong) {
			return uuid.Nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
		return uuid.Nil, fmt.Errorf("service: could not hash password: %w", err)
	}

	token, tokenHash, err := identity.NewConfirmationToken()
	if err != nil {
		return uuid.Nil, fmt.Errorf("service: %w", err)
	}

	account := &models.Account{
		ID:                    uuid.New(),
		Email:                 email,
		PasswordHash:          hash,
		Role:                  role,
		ConfirmationTokenHash: tokenHash,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			log.Warn("Account with this email already exists")
			return uuid.Nil, err
		}
		log.WithError(err).Error("Failed to create account in repository")
		return uuid.Nil, fmt.Errorf("service: could not create account: %w", err)
	}

	s.metrics.IncAccountRegistered(string(role))
	if s.publisher != nil {
		event := webhook.WebhookEvent{
			Type:              webhook.EventAccountConfirmationRequested,
			AccountID:         account.ID,
			Email:             account.Email,
			ConfirmationToken: token,
			Timestamp:         time.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.WithError(err).Warn("Failed to publish confirmation request")
		}
	}

	log.WithField("account_id", account.ID).Info("Account signed up, awaiting confirmation")
	return account.ID, nil
}

// ConfirmAccount подтверждает учетную запись по токену из письма
func (s *authService) ConfirmAccount(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return validationError("confirmation token is required")
	}

	account, err := s.repo.ConfirmAccount(ctx, identity.HashConfirmationToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("service: could not confirm account: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"service":    "auth",
		"method":     "ConfirmAccount",
		"account_id": account.ID,
	}).Info("Account confirmed")
	return nil
}

// SignIn проверяет пароль и выпускает access-токен
func (s *authService) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "SignIn",
	})

	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("service: could not get account: %w", err)
	}

	if err := identity.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, identity.ErrPasswordMismatch) {
			log.WithField("account_id", account.ID).Warn("Invalid credentials")
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("service: %w", err)
	}

	token, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return "", fmt.Errorf("service: could not issue token: %w", err)
	}
	return token, nil
}

// CurrentAccount возвращает личность вызывающего по идентификатору из проверенного токена.
// Статус подтверждения читается из хранилища при каждом запросе.
func (s *authService) CurrentAccount(ctx context.Context, accountID uuid.UUID) (models.Caller, error) {
	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Caller{}, ErrUnauthenticated
		}
		return models.Caller{}, fmt.Errorf("service: could not get account: %w", err)
	}
	return models.Caller{
		AccountID: account.ID,
		Role:      account.Role,
		Confirmed: account.Confirmed,
	}, nil
}
