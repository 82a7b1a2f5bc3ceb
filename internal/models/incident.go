package models

import (
	"time"

	"github.com/google/uuid"
)

type IncidentStatus string

const (
	StatusPending      IncidentStatus = "pending"
	StatusAcknowledged IncidentStatus = "acknowledged"
	StatusInProgress   IncidentStatus = "in_progress"
	StatusResolved     IncidentStatus = "resolved"
	StatusClosed       IncidentStatus = "closed"
)

// Valid проверяет принадлежность к перечислению. Граф переходов не задан:
// любой статус может смениться любым другим.
func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAcknowledged, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type IncidentCategory string

const (
	CategoryCrime          IncidentCategory = "crime"
	CategoryFire           IncidentCategory = "fire"
	CategoryMedical        IncidentCategory = "medical"
	CategoryInfrastructure IncidentCategory = "infrastructure"
	CategoryEnvironmental  IncidentCategory = "environmental"
)

func (c IncidentCategory) Valid() bool {
	switch c {
	case CategoryCrime, CategoryFire, CategoryMedical, CategoryInfrastructure, CategoryEnvironmental:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// AuthorKind - сторона, оставившая запись в журнале
type AuthorKind string

const (
	AuthorCitizen    AuthorKind = "citizen"
	AuthorDepartment AuthorKind = "department"
)

// Location - адрес происшествия
type Location struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
}

type Incident struct {
	ID                   uuid.UUID        `json:"id"`
	CitizenID            uuid.UUID        `json:"citizen_id"`
	Title                string           `json:"title" validate:"required"`
	Description          string           `json:"description" validate:"required"`
	Category             IncidentCategory `json:"category" validate:"required"`
	Severity             Severity         `json:"severity" validate:"required"`
	Status               IncidentStatus   `json:"status"`
	Location             Location         `json:"location"`
	AssignedDepartmentID *uuid.UUID       `json:"assigned_department_id,omitempty"`
	ReporterName         string           `json:"reporter_name,omitempty"`
	ReporterPhone        string           `json:"reporter_phone,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// IsAssigned сообщает, закреплен ли инцидент за департаментом
func (i *Incident) IsAssigned() bool {
	return i.AssignedDepartmentID != nil && *i.AssignedDepartmentID != uuid.Nil
}

// IsAssignedTo сообщает, закреплен ли инцидент за указанным департаментом
func (i *Incident) IsAssignedTo(departmentID uuid.UUID) bool {
	return i.IsAssigned() && *i.AssignedDepartmentID == departmentID
}

// IncidentUpdate - неизменяемая запись журнала инцидента
type IncidentUpdate struct {
	ID           uuid.UUID       `json:"id"`
	IncidentID   uuid.UUID       `json:"incident_id"`
	AuthorID     uuid.UUID       `json:"author_id"`
	AuthorKind   AuthorKind      `json:"author_kind"`
	Message      string          `json:"message"`
	StatusChange *IncidentStatus `json:"status_change,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IncidentFilter - параметры выборки списка инцидентов
type IncidentFilter struct {
	CitizenID            *uuid.UUID
	AssignedDepartmentID *uuid.UUID
	Status               IncidentStatus
	Page                 int
	PageSize             int
}

// DepartmentStats - счетчики панели департамента
type DepartmentStats struct {
	Total      int `json:"total"`
	Assigned   int `json:"assigned"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
}

// DepartmentDashboard - сводка для панели департамента
type DepartmentDashboard struct {
	Profile  *DepartmentProfile `json:"profile"`
	Assigned []*Incident        `json:"assigned"`
	Stats    DepartmentStats    `json:"stats"`
}
