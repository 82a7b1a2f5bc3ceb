package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/sirupsen/logrus"
)

// parseIncidentID читает :id из пути; при ошибке ответ уже записан
func (h *Handler) parseIncidentID(c *gin.Context, log *logrus.Entry) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.WithError(err).Warn("Invalid incident ID format")
		h.badRequest(c, "invalid incident ID")
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Create a new incident
// @Description Report a new incident. The reporter is the authenticated citizen.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Caller has no verified citizen identity"
// @Failure 403 {object} ErrorResponse "Citizen profile is not provisioned"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	model := DTOToIncidentModel(input)
	if err := h.incidentService.CreateIncident(c.Request.Context(), callerFrom(c), model); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(model))
}

// @Summary Get a list of incidents
// @Description Citizens see their own incidents, departments see all of them. assigned=me narrows a department's list to its own.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Param status query string false "Status filter" Enums(pending, acknowledged, in_progress, resolved, closed)
// @Param assigned query string false "Only incidents assigned to the caller" Enums(me)
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	caller := callerFrom(c)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		h.badRequest(c, "invalid page")
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil {
		h.badRequest(c, "invalid pageSize")
		return
	}

	filter := models.IncidentFilter{
		Status:   models.IncidentStatus(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	}
	switch c.Query("assigned") {
	case "":
	case "me":
		departmentID := caller.AccountID
		filter.AssignedDepartmentID = &departmentID
	default:
		h.badRequest(c, "assigned supports only \"me\"")
		return
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), caller, filter)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get an incident by ID
// @Description Get details of a specific incident. Citizens can only read their own.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	log := h.logger.WithField("method", "getIncident")
	id, ok := h.parseIncidentID(c, log)
	if !ok {
		return
	}

	incident, err := h.incidentService.GetIncident(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Claim an incident
// @Description Assign an unassigned incident to the calling department
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentUpdateResponse
// @Failure 400 {object} ErrorResponse "Invalid ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not a confirmed department"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 409 {object} ErrorResponse "Already assigned"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id}/claim [post]
func (h *Handler) claimIncident(c *gin.Context) {
	log := h.logger.WithField("method", "claimIncident")
	id, ok := h.parseIncidentID(c, log)
	if !ok {
		return
	}

	update, err := h.incidentService.ClaimIncident(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUpdateResponse(update))
}

// @Summary Change incident status
// @Description Set a new status on an incident assigned to the calling department. The message is optional.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} UpdateStatusResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Incident is not assigned to the caller"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id}/status [patch]
func (h *Handler) updateStatus(c *gin.Context) {
	log := h.logger.WithField("method", "updateStatus")
	id, ok := h.parseIncidentID(c, log)
	if !ok {
		return
	}

	var input UpdateStatusRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	incident, update, err := h.incidentService.UpdateStatus(c.Request.Context(), callerFrom(c), id, models.IncidentStatus(input.Status), input.Message)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, UpdateStatusResponse{
		Incident: ModelToIncidentResponse(incident),
		Update:   ModelToUpdateResponse(update),
	})
}

// @Summary List incident updates
// @Description Return the incident's update log, oldest first
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {array} IncidentUpdateResponse
// @Failure 400 {object} ErrorResponse "Invalid ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id}/updates [get]
func (h *Handler) listUpdates(c *gin.Context) {
	log := h.logger.WithField("method", "listUpdates")
	id, ok := h.parseIncidentID(c, log)
	if !ok {
		return
	}

	updates, err := h.incidentService.ListUpdates(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToUpdateResponses(updates))
}

// @Summary Post a message
// @Description Append a message to the incident's update log
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param message body PostMessageRequest true "Message"
// @Success 201 {object} IncidentUpdateResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id}/updates [post]
func (h *Handler) postMessage(c *gin.Context) {
	log := h.logger.WithField("method", "postMessage")
	id, ok := h.parseIncidentID(c, log)
	if !ok {
		return
	}

	var input PostMessageRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	update, err := h.incidentService.PostMessage(c.Request.Context(), callerFrom(c), id, input.Message)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToUpdateResponse(update))
}
