package models

import (
	"time"

	"github.com/google/uuid"
)

// Role - роль учетной записи у провайдера идентификации
type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleDepartment Role = "department"
)

// Valid сообщает, известна ли роль
func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleDepartment
}

// DepartmentType - тип департамента
type DepartmentType string

const (
	DepartmentPolice        DepartmentType = "police"
	DepartmentFire          DepartmentType = "fire"
	DepartmentMedical       DepartmentType = "medical"
	DepartmentPublicWorks   DepartmentType = "public_works"
	DepartmentEnvironmental DepartmentType = "environmental"
)

func (t DepartmentType) Valid() bool {
	switch t {
	case DepartmentPolice, DepartmentFire, DepartmentMedical, DepartmentPublicWorks, DepartmentEnvironmental:
		return true
	}
	return false
}

// Account - учетная запись локального провайдера идентификации
type Account struct {
	ID                    uuid.UUID  `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	Role                  Role       `json:"role"`
	Confirmed             bool       `json:"confirmed"`
	ConfirmationTokenHash string     `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	ConfirmedAt           *time.Time `json:"confirmed_at,omitempty"`
}

// Caller - проверенная личность вызывающего, передается явно в каждую операцию
type Caller struct {
	AccountID uuid.UUID
	Role      Role
	Confirmed bool
}

// IsZero возвращает true, если вызывающий не аутентифицирован
func (c Caller) IsZero() bool {
	return c.AccountID == uuid.Nil
}

func (c Caller) IsCitizen() bool {
	return !c.IsZero() && c.Confirmed && c.Role == RoleCitizen
}

func (c Caller) IsDepartment() bool {
	return !c.IsZero() && c.Confirmed && c.Role == RoleDepartment
}

// CitizenProfile - профиль гражданина
type CitizenProfile struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name" validate:"required"`
	PhoneNumber string    `json:"phone_number" validate:"required"`
	Address     string    `json:"address" validate:"required"`
	City        string    `json:"city" validate:"required"`
	State       string    `json:"state" validate:"required"`
	ZipCode     string    `json:"zip_code" validate:"required"`
	IDNumber    string    `json:"id_number" validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
}

// DepartmentProfile - профиль департамента
type DepartmentProfile struct {
	ID             uuid.UUID      `json:"id"`
	DepartmentName string         `json:"department_name" validate:"required"`
	DepartmentType DepartmentType `json:"department_type" validate:"required"`
	ContactEmail   string         `json:"contact_email" validate:"required"`
	ContactPhone   string         `json:"contact_phone" validate:"required"`
	Address        string         `json:"address" validate:"required"`
	City           string         `json:"city" validate:"required"`
	State          string         `json:"state" validate:"required"`
	CreatedAt      time.Time      `json:"created_at"`
}
