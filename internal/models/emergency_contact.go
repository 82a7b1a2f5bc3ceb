package models

// EmergencyContact представляет службу экстренной помощи из справочника
type EmergencyContact struct {
	ID           int64  `json:"id" yaml:"-"`
	ServiceName  string `json:"service_name" yaml:"service_name"`
	PhoneNumber  string `json:"phone_number" yaml:"phone_number"`
	Email        string `json:"email,omitempty" yaml:"email"`
	Availability string `json:"availability" yaml:"availability"`
	IsActive     bool   `json:"is_active" yaml:"is_active"`
}
