package v1

import "github.com/shenikar/incident_reporting_system/internal/models"

// DTOToIncidentModel преобразует DTO создания в доменную модель
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	return &models.Incident{
		Title:       dto.Title,
		Description: dto.Description,
		Category:    models.IncidentCategory(dto.Category),
		Severity:    models.Severity(dto.Severity),
		Location: models.Location{
			Address: dto.Location.Address,
			City:    dto.Location.City,
			State:   dto.Location.State,
		},
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:          model.ID,
		CitizenID:   model.CitizenID,
		Title:       model.Title,
		Description: model.Description,
		Category:    string(model.Category),
		Severity:    string(model.Severity),
		Status:      string(model.Status),
		Location: LocationDTO{
			Address: model.Location.Address,
			City:    model.Location.City,
			State:   model.Location.State,
		},
		AssignedDepartmentID: model.AssignedDepartmentID,
		ReporterName:         model.ReporterName,
		ReporterPhone:        model.ReporterPhone,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ModelToUpdateResponse(model *models.IncidentUpdate) *IncidentUpdateResponse {
	if model == nil {
		return nil
	}
	resp := &IncidentUpdateResponse{
		ID:         model.ID,
		IncidentID: model.IncidentID,
		AuthorID:   model.AuthorID,
		AuthorKind: string(model.AuthorKind),
		Message:    model.Message,
		CreatedAt:  model.CreatedAt,
	}
	if model.StatusChange != nil {
		status := string(*model.StatusChange)
		resp.StatusChange = &status
	}
	return resp
}

func ModelsToUpdateResponses(models []*models.IncidentUpdate) []*IncidentUpdateResponse {
	responses := make([]*IncidentUpdateResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToUpdateResponse(model)
	}
	return responses
}

func DTOToCitizenProfile(dto CitizenProfileRequest) *models.CitizenProfile {
	return &models.CitizenProfile{
		FullName:    dto.FullName,
		PhoneNumber: dto.PhoneNumber,
		Address:     dto.Address,
		City:        dto.City,
		State:       dto.State,
		ZipCode:     dto.ZipCode,
		IDNumber:    dto.IDNumber,
	}
}

func ModelToCitizenProfileResponse(model *models.CitizenProfile) *CitizenProfileResponse {
	return &CitizenProfileResponse{
		ID:          model.ID,
		FullName:    model.FullName,
		PhoneNumber: model.PhoneNumber,
		Address:     model.Address,
		City:        model.City,
		State:       model.State,
		ZipCode:     model.ZipCode,
		IDNumber:    model.IDNumber,
		CreatedAt:   model.CreatedAt,
	}
}

func DTOToDepartmentProfile(dto DepartmentProfileRequest) *models.DepartmentProfile {
	return &models.DepartmentProfile{
		DepartmentName: dto.DepartmentName,
		DepartmentType: models.DepartmentType(dto.DepartmentType),
		ContactEmail:   dto.ContactEmail,
		ContactPhone:   dto.ContactPhone,
		Address:        dto.Address,
		City:           dto.City,
		State:          dto.State,
	}
}

func ModelToDepartmentProfileResponse(model *models.DepartmentProfile) *DepartmentProfileResponse {
	if model == nil {
		return nil
	}
	return &DepartmentProfileResponse{
		ID:             model.ID,
		DepartmentName: model.DepartmentName,
		DepartmentType: string(model.DepartmentType),
		ContactEmail:   model.ContactEmail,
		ContactPhone:   model.ContactPhone,
		Address:        model.Address,
		City:           model.City,
		State:          model.State,
		CreatedAt:      model.CreatedAt,
	}
}

func ModelToDashboardResponse(model *models.DepartmentDashboard) *DashboardResponse {
	return &DashboardResponse{
		Profile:  ModelToDepartmentProfileResponse(model.Profile),
		Assigned: ModelsToIncidentResponses(model.Assigned),
		Stats: StatsResponse{
			Total:      model.Stats.Total,
			Assigned:   model.Stats.Assigned,
			Pending:    model.Stats.Pending,
			InProgress: model.Stats.InProgress,
		},
	}
}

func ModelsToContactResponses(models []*models.EmergencyContact) []*EmergencyContactResponse {
	responses := make([]*EmergencyContactResponse, len(models))
	for i, model := range models {
		responses[i] = &EmergencyContactResponse{
			ID:           model.ID,
			ServiceName:  model.ServiceName,
			PhoneNumber:  model.PhoneNumber,
			Email:        model.Email,
			Availability: model.Availability,
		}
	}
	return responses
}
