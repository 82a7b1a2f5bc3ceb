package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/incident_reporting_system/internal/identity"
	"github.com/shenikar/incident_reporting_system/internal/service"
	"github.com/sirupsen/logrus"
)

// HealthCheck - зависимость, доступность которой показывает /system/health
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// Services - сервисы, которые обслуживает HTTP слой
type Services struct {
	Incidents service.IncidentService
	Accounts  service.AccountService
	Auth      service.AuthService
	Contacts  service.EmergencyContactService
}

type Handler struct {
	incidentService service.IncidentService
	accountService  service.AccountService
	authService     service.AuthService
	contactService  service.EmergencyContactService
	tokens          *identity.TokenService
	healthChecks    []HealthCheck
	logger          *logrus.Logger
	validate        *validator.Validate
}

func NewHandler(services Services, tokens *identity.TokenService, logger *logrus.Logger, checks ...HealthCheck) *Handler {
	return &Handler{
		incidentService: services.Incidents,
		accountService:  services.Accounts,
		authService:     services.Auth,
		contactService:  services.Contacts,
		tokens:          tokens,
		healthChecks:    checks,
		logger:          logger,
		validate:        validator.New(),
	}
}

// ErrorResponse - тело ответа с ошибкой
// @Description Ошибка запроса
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorStatus сопоставляет вид ошибки рабочего процесса с HTTP статусом и кодом
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrNotConfirmed):
		return http.StatusForbidden, "not_confirmed"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, service.ErrDuplicateAccount):
		return http.StatusConflict, "duplicate_account"
	case errors.Is(err, service.ErrAlreadyAssigned):
		return http.StatusConflict, "already_assigned"
	}
	return http.StatusInternalServerError, "internal"
}

// respondError пишет ответ об ошибке; детали внутренних ошибок не раскрываются
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
		c.JSON(status, ErrorResponse{Error: "internal server error", Code: code})
		return
	}
	log.WithError(err).Warn("Request rejected")
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "validation_error"})
}

// bindAndValidate читает JSON тело и проверяет теги validate
func (h *Handler) bindAndValidate(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		h.badRequest(c, "invalid request body")
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		h.badRequest(c, err.Error())
		return false
	}
	return true
}

// @Summary Get application health status
// @Description Get health status of the application and its dependencies
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.healthChecks))}
	status := http.StatusOK
	for _, check := range h.healthChecks {
		if err := check.Check(ctx); err != nil {
			h.logger.WithError(err).WithField("dependency", check.Name()).Warn("Health check failed")
			resp.Checks[check.Name()] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name()] = "ok"
	}
	c.JSON(status, resp)
}
