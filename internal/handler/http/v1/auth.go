package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
)

const callerKey = "caller"

// AuthMiddleware - middleware для аутентификации по Bearer токену.
// Проверенная личность кладется в контекст gin и читается через callerFrom.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := h.logger.WithField("method", "AuthMiddleware")

		authHeader := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			log.Warn("Bearer token missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "bearer token required", Code: "unauthenticated"})
			return
		}

		accountID, err := h.tokens.AccountIDFromToken(strings.TrimSpace(token))
		if err != nil {
			log.WithError(err).Warn("Invalid bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token", Code: "unauthenticated"})
			return
		}

		caller, err := h.authService.CurrentAccount(c.Request.Context(), accountID)
		if err != nil {
			status, code := errorStatus(err)
			if status == http.StatusInternalServerError {
				log.WithError(err).Error("Failed to resolve current account")
				c.AbortWithStatusJSON(status, ErrorResponse{Error: "internal server error", Code: code})
				return
			}
			log.WithError(err).Warn("Account for token not found")
			c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// callerFrom возвращает личность, установленную AuthMiddleware; без нее - нулевой Caller
func callerFrom(c *gin.Context) models.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(models.Caller); ok {
			return caller
		}
	}
	return models.Caller{}
}

// @Summary Sign up
// @Description Create a local account. A confirmation token is delivered as an account.confirmation_requested event.
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body SignUpRequest true "Account sign up request"
// @Success 201 {object} SignUpResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 409 {object} ErrorResponse "Account already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var input SignUpRequest
	log := h.logger.WithField("method", "signUp")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	accountID, err := h.authService.SignUp(c.Request.Context(), input.Email, input.Password, models.Role(input.Role))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, SignUpResponse{AccountID: accountID})
}

// @Summary Confirm account
// @Description Confirm an account with the token from the confirmation event
// @Tags Auth
// @Accept json
// @Param confirmation body ConfirmRequest true "Confirmation token"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 404 {object} ErrorResponse "Unknown or used token"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/confirm [post]
func (h *Handler) confirmAccount(c *gin.Context) {
	var input ConfirmRequest
	log := h.logger.WithField("method", "confirmAccount")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	if err := h.authService.ConfirmAccount(c.Request.Context(), input.Token); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Sign in
// @Description Exchange email and password for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body SignInRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/signin [post]
func (h *Handler) signIn(c *gin.Context) {
	var input SignInRequest
	log := h.logger.WithField("method", "signIn")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	token, err := h.authService.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "Bearer"})
}

// @Summary Current account
// @Description Return the identity behind the bearer token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /me [get]
func (h *Handler) me(c *gin.Context) {
	caller := callerFrom(c)
	if caller.IsZero() {
		h.respondError(c, h.logger.WithField("method", "me"), service.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, MeResponse{
		AccountID: caller.AccountID,
		Role:      string(caller.Role),
		Confirmed: caller.Confirmed,
	})
}
