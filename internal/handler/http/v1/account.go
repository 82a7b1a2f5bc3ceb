package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Create citizen profile
// @Description Provision the citizen profile for the authenticated citizen account
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body CitizenProfileRequest true "Citizen profile"
// @Success 201 {object} CitizenProfileResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not a confirmed citizen"
// @Failure 409 {object} ErrorResponse "Profile already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /citizens/profile [post]
func (h *Handler) createCitizenProfile(c *gin.Context) {
	var input CitizenProfileRequest
	log := h.logger.WithField("method", "createCitizenProfile")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	profile := DTOToCitizenProfile(input)
	if err := h.accountService.ProvisionCitizen(c.Request.Context(), callerFrom(c), profile); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToCitizenProfileResponse(profile))
}

// @Summary Get citizen profile
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CitizenProfileResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not a confirmed citizen"
// @Failure 404 {object} ErrorResponse "Profile not provisioned"
// @Router /citizens/profile [get]
func (h *Handler) getCitizenProfile(c *gin.Context) {
	log := h.logger.WithField("method", "getCitizenProfile")

	profile, err := h.accountService.GetCitizenProfile(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToCitizenProfileResponse(profile))
}

// @Summary Create department profile
// @Description Provision the department profile for the authenticated department account
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body DepartmentProfileRequest true "Department profile"
// @Success 201 {object} DepartmentProfileResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not a confirmed department"
// @Failure 409 {object} ErrorResponse "Profile already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /departments/profile [post]
func (h *Handler) createDepartmentProfile(c *gin.Context) {
	var input DepartmentProfileRequest
	log := h.logger.WithField("method", "createDepartmentProfile")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	profile := DTOToDepartmentProfile(input)
	if err := h.accountService.ProvisionDepartment(c.Request.Context(), callerFrom(c), profile); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToDepartmentProfileResponse(profile))
}

// @Summary Get department profile
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DepartmentProfileResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not a confirmed department"
// @Failure 404 {object} ErrorResponse "Profile not provisioned"
// @Router /departments/profile [get]
func (h *Handler) getDepartmentProfile(c *gin.Context) {
	log := h.logger.WithField("method", "getDepartmentProfile")

	profile, err := h.accountService.GetDepartmentProfile(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToDepartmentProfileResponse(profile))
}

// @Summary Department dashboard
// @Description Profile, assigned incidents and counters of the calling department
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not a confirmed department"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /departments/dashboard [get]
func (h *Handler) departmentDashboard(c *gin.Context) {
	log := h.logger.WithField("method", "departmentDashboard")

	dashboard, err := h.incidentService.DepartmentDashboard(c.Request.Context(), callerFrom(c))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToDashboardResponse(dashboard))
}

// @Summary Emergency contacts
// @Description Active emergency services from the directory
// @Tags Emergency
// @Produce json
// @Security BearerAuth
// @Success 200 {array} EmergencyContactResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /emergency-contacts [get]
func (h *Handler) listEmergencyContacts(c *gin.Context) {
	log := h.logger.WithField("method", "listEmergencyContacts")

	contacts, err := h.contactService.ListActive(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToContactResponses(contacts))
}
