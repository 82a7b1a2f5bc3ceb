package v1

import (
	"time"

	"github.com/google/uuid"
)

// SignUpRequest DTO для регистрации
// @Description DTO для регистрации учетной записи
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=citizen department"`
}

// SignUpResponse DTO ответа на регистрацию
// @Description Идентификатор созданной учетной записи
type SignUpResponse struct {
	AccountID uuid.UUID `json:"account_id"`
}

// ConfirmRequest DTO для подтверждения учетной записи
// @Description Токен подтверждения из письма
type ConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}

// SignInRequest DTO для входа
// @Description DTO для входа по email и паролю
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse DTO с access-токеном
// @Description Bearer токен доступа
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MeResponse DTO текущей учетной записи
// @Description Текущая личность вызывающего
type MeResponse struct {
	AccountID uuid.UUID `json:"account_id"`
	Role      string    `json:"role"`
	Confirmed bool      `json:"confirmed"`
}

// CitizenProfileRequest DTO для создания профиля гражданина
// @Description DTO для создания профиля гражданина
type CitizenProfileRequest struct {
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"required,max=50"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	ZipCode     string `json:"zip_code" validate:"required,max=20"`
	IDNumber    string `json:"id_number" validate:"required,max=50"`
}

// CitizenProfileResponse DTO профиля гражданина
// @Description Профиль гражданина
type CitizenProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	IDNumber    string    `json:"id_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// DepartmentProfileRequest DTO для создания профиля департамента
// @Description DTO для создания профиля департамента
type DepartmentProfileRequest struct {
	DepartmentName string `json:"department_name" validate:"required,max=255"`
	DepartmentType string `json:"department_type" validate:"required,oneof=police fire medical public_works environmental"`
	ContactEmail   string `json:"contact_email" validate:"required,email"`
	ContactPhone   string `json:"contact_phone" validate:"required,max=50"`
	Address        string `json:"address" validate:"required"`
	City           string `json:"city" validate:"required"`
	State          string `json:"state" validate:"required"`
}

// DepartmentProfileResponse DTO профиля департамента
// @Description Профиль департамента
type DepartmentProfileResponse struct {
	ID             uuid.UUID `json:"id"`
	DepartmentName string    `json:"department_name"`
	DepartmentType string    `json:"department_type"`
	ContactEmail   string    `json:"contact_email"`
	ContactPhone   string    `json:"contact_phone"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
}

// LocationDTO адрес происшествия
// @Description Адрес происшествия
type LocationDTO struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
}

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	Title       string      `json:"title" validate:"required,min=2,max=255"`
	Description string      `json:"description" validate:"required"`
	Category    string      `json:"category" validate:"required,oneof=crime fire medical infrastructure environmental"`
	Severity    string      `json:"severity" validate:"required,oneof=low medium high critical"`
	Location    LocationDTO `json:"location" validate:"required"`
}

// UpdateStatusRequest DTO для смены статуса
// @Description DTO для смены статуса инцидента
type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=pending acknowledged in_progress resolved closed"`
	Message string `json:"message,omitempty" validate:"max=2000"`
}

// PostMessageRequest DTO для сообщения в журнал
// @Description DTO для сообщения в журнал инцидента
type PostMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                   uuid.UUID   `json:"id"`
	CitizenID            uuid.UUID   `json:"citizen_id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	Category             string      `json:"category"`
	Severity             string      `json:"severity"`
	Status               string      `json:"status"`
	Location             LocationDTO `json:"location"`
	AssignedDepartmentID *uuid.UUID  `json:"assigned_department_id"`
	ReporterName         string      `json:"reporter_name,omitempty"`
	ReporterPhone        string      `json:"reporter_phone,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// IncidentUpdateResponse DTO записи журнала
// @Description Запись журнала инцидента
type IncidentUpdateResponse struct {
	ID           uuid.UUID `json:"id"`
	IncidentID   uuid.UUID `json:"incident_id"`
	AuthorID     uuid.UUID `json:"author_id"`
	AuthorKind   string    `json:"author_kind"`
	Message      string    `json:"message"`
	StatusChange *string   `json:"status_change"`
	CreatedAt    time.Time `json:"created_at"`
}

// UpdateStatusResponse DTO ответа на смену статуса
// @Description Инцидент после смены статуса и запись журнала, если она была добавлена
type UpdateStatusResponse struct {
	Incident *IncidentResponse       `json:"incident"`
	Update   *IncidentUpdateResponse `json:"update,omitempty"`
}

// DashboardResponse DTO панели департамента
// @Description Профиль, закрепленные инциденты и счетчики департамента
type DashboardResponse struct {
	Profile  *DepartmentProfileResponse `json:"profile"`
	Assigned []*IncidentResponse        `json:"assigned"`
	Stats    StatsResponse              `json:"stats"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	Total      int `json:"total"`
	Assigned   int `json:"assigned"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
}

// EmergencyContactResponse DTO экстренной службы
// @Description Экстренная служба
type EmergencyContactResponse struct {
	ID           int64  `json:"id"`
	ServiceName  string `json:"service_name"`
	PhoneNumber  string `json:"phone_number"`
	Email        string `json:"email,omitempty"`
	Availability string `json:"availability"`
}

// HealthResponse DTO состояния сервиса
// @Description Состояние сервиса и его зависимостей
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
