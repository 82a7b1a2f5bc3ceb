package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Публичные маршруты провайдера идентификации
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/confirm", h.confirmAccount)
		auth.POST("/signin", h.signIn)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)

	protected := api.Group("", h.AuthMiddleware())
	protected.GET("/me", h.me)

	citizens := protected.Group("/citizens")
	{
		citizens.POST("/profile", h.createCitizenProfile)
		citizens.GET("/profile", h.getCitizenProfile)
	}

	departments := protected.Group("/departments")
	{
		departments.POST("/profile", h.createDepartmentProfile)
		departments.GET("/profile", h.getDepartmentProfile)
		departments.GET("/dashboard", h.departmentDashboard)
	}

	incidents := protected.Group("/incidents")
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.POST("/:id/claim", h.claimIncident)
		incidents.PATCH("/:id/status", h.updateStatus)
		incidents.GET("/:id/updates", h.listUpdates)
		incidents.POST("/:id/updates", h.postMessage)
	}

	protected.GET("/emergency-contacts", h.listEmergencyContacts)
}
