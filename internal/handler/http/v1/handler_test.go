package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_system/internal/identity"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
	"github.com/shenikar/incident_reporting_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testDeps struct {
	incidents *mocks.MockIncidentService
	accounts  *mocks.MockAccountService
	auth      *mocks.MockAuthService
	contacts  *mocks.MockEmergencyContactService
	tokens    *identity.TokenService
}

type stubCheck struct {
	name string
	err  error
}

func (s stubCheck) Name() string { return s.name }
func (s stubCheck) Check(_ context.Context) error { return s.err }

// newTestHandler создает Handler с мокированными сервисами
func newTestHandler(t *testing.T, checks ...HealthCheck) (*Handler, testDeps, *gin.Engine) {
	ctrl := gomock.NewController(t)
	deps := testDeps{
		incidents: mocks.NewMockIncidentService(ctrl),
		accounts:  mocks.NewMockAccountService(ctrl),
		auth:      mocks.NewMockAuthService(ctrl),
		contacts:  mocks.NewMockEmergencyContactService(ctrl),
		tokens:    identity.NewTokenService("test-secret", "test-issuer", "test-audience", time.Hour),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	handler := NewHandler(Services{
		Incidents: deps.incidents,
		Accounts:  deps.accounts,
		Auth:      deps.auth,
		Contacts:  deps.contacts,
	}, deps.tokens, logger, checks...)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, deps, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// authAs выпускает токен для caller и ожидает, что middleware разрешит его через CurrentAccount
func authAs(t *testing.T, deps testDeps, caller models.Caller) map[string]string {
	t.Helper()
	token, err := deps.tokens.Issue(caller.AccountID, caller.Role)
	require.NoError(t, err)
	deps.auth.EXPECT().CurrentAccount(gomock.Any(), caller.AccountID).Return(caller, nil).Times(1)
	return map[string]string{"Authorization": "Bearer " + token}
}

func citizen() models.Caller {
	return models.Caller{AccountID: uuid.New(), Role: models.RoleCitizen, Confirmed: true}
}

func department() models.Caller {
	return models.Caller{AccountID: uuid.New(), Role: models.RoleDepartment, Confirmed: true}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func validIncidentRequest() CreateIncidentRequest {
	return CreateIncidentRequest{
		Title:       "Pothole on Main St",
		Description: "Large pothole near the crosswalk",
		Category:    "infrastructure",
		Severity:    "medium",
		Location:    LocationDTO{Address: "12 Main St", City: "Springfield", State: "IL"},
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, deps, router := newTestHandler(t)

	deps.incidents.EXPECT().ListIncidents(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", decodeError(t, w).Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	_, deps, router := newTestHandler(t)

	deps.auth.EXPECT().CurrentAccount(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/api/v1/me", nil, map[string]string{"Authorization": "Bearer not-a-jwt"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestAuthMiddleware_UnknownAccount(t *testing.T) {
	_, deps, router := newTestHandler(t)
	accountID := uuid.New()
	token, err := deps.tokens.Issue(accountID, models.RoleCitizen)
	require.NoError(t, err)

	deps.auth.EXPECT().CurrentAccount(gomock.Any(), accountID).Return(models.Caller{}, service.ErrUnauthenticated).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/me", nil, map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_Success(t *testing.T) {
	_, deps, router := newTestHandler(t)
	caller := models.Caller{AccountID: uuid.New(), Role: models.RoleDepartment, Confirmed: false}

	w := makeRequest(router, http.MethodGet, "/api/v1/me", nil, authAs(t, deps, caller))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, caller.AccountID, resp.AccountID)
	assert.Equal(t, "department", resp.Role)
	assert.False(t, resp.Confirmed)
}

func TestSignUp_Success(t *testing.T) {
	_, deps, router := newTestHandler(t)
	accountID := uuid.New()

	deps.auth.EXPECT().
		SignUp(gomock.Any(), "jane@example.com", "s3cret-pass", models.RoleCitizen).
		Return(accountID, nil).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/signup", jsonBody(t, SignUpRequest{
		Email: "jane@example.com", Password: "s3cret-pass", Role: "citizen",
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp SignUpResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, accountID, resp.AccountID)
}

func TestSignUp_Duplicate(t *testing.T) {
	_, deps, router := newTestHandler(t)

	deps.auth.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(uuid.Nil, fmt.Errorf("service: could not create account: %w", service.ErrDuplicateAccount)).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/signup", jsonBody(t, SignUpRequest{
		Email: "jane@example.com", Password: "s3cret-pass", Role: "department",
	}))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_account", decodeError(t, w).Code)
}

func TestSignUp_UnknownRole(t *testing.T) {
	_, deps, router := newTestHandler(t)

	deps.auth.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/signup", jsonBody(t, SignUpRequest{
		Email: "jane@example.com", Password: "s3cret-pass", Role: "admin",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Role' failed on the 'oneof' tag")
}

func TestConfirmAccount(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.auth.EXPECT().ConfirmAccount(gomock.Any(), "token-123").Return(nil).Times(1)

		w := makeRequest(router, http.MethodPost, "/api/v1/auth/confirm", jsonBody(t, ConfirmRequest{Token: "token-123"}))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.auth.EXPECT().ConfirmAccount(gomock.Any(), "used").Return(service.ErrNotFound).Times(1)

		w := makeRequest(router, http.MethodPost, "/api/v1/auth/confirm", jsonBody(t, ConfirmRequest{Token: "used"}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.auth.EXPECT().SignIn(gomock.Any(), "jane@example.com", "s3cret-pass").Return("jwt-token", nil).Times(1)

		w := makeRequest(router, http.MethodPost, "/api/v1/auth/signin", jsonBody(t, SignInRequest{
			Email: "jane@example.com", Password: "s3cret-pass",
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "jwt-token", resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.auth.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).Return("", service.ErrUnauthenticated).Times(1)

		w := makeRequest(router, http.MethodPost, "/api/v1/auth/signin", jsonBody(t, SignInRequest{
			Email: "jane@example.com", Password: "wrong",
		}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCreateIncident_Success(t *testing.T) {
	_, deps, router := newTestHandler(t)
	caller := citizen()
	incidentID := uuid.New()
	reqBody := validIncidentRequest()

	deps.incidents.EXPECT().
		CreateIncident(gomock.Any(), caller, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Caller, inc *models.Incident) error {
			assert.Equal(t, models.CategoryInfrastructure, inc.Category)
			assert.Equal(t, "Springfield", inc.Location.City)
			inc.ID = incidentID
			inc.CitizenID = caller.AccountID
			inc.Status = models.StatusPending
			return nil
		}).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody), authAs(t, deps, caller))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, incidentID, resp.ID)
	assert.Equal(t, caller.AccountID, resp.CitizenID)
	assert.Equal(t, "pending", resp.Status)
	assert.Nil(t, resp.AssignedDepartmentID)
}

func TestCreateIncident_InvalidJSON(t *testing.T) {
	_, deps, router := newTestHandler(t)

	deps.incidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", bytes.NewBufferString(`{"title": "test"`), authAs(t, deps, citizen()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestCreateIncident_ValidationError(t *testing.T) {
	_, deps, router := newTestHandler(t)
	reqBody := validIncidentRequest()
	reqBody.Title = ""

	deps.incidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody), authAs(t, deps, citizen()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Title' failed on the 'required' tag")
	assert.Equal(t, "validation_error", decodeError(t, w).Code)
}

func TestCreateIncident_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no verified citizen identity", service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"profile not provisioned", fmt.Errorf("%w: citizen profile is not provisioned", service.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"storage failure", errors.New("connection reset"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, deps, router := newTestHandler(t)
			deps.incidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.err).Times(1)

			w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, validIncidentRequest()), authAs(t, deps, citizen()))

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotContains(t, resp.Error, "connection reset")
		})
	}
}

func TestGetIncident_Success(t *testing.T) {
	_, deps, router := newTestHandler(t)
	caller := department()
	incidentID := uuid.New()
	expected := &models.Incident{
		ID:           incidentID,
		Title:        "Retrieved Incident",
		Status:       models.StatusInProgress,
		ReporterName: "Jane Doe",
	}

	deps.incidents.EXPECT().GetIncident(gomock.Any(), caller, incidentID).Return(expected, nil).Times(1)

	w := makeRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s", incidentID), nil, authAs(t, deps, caller))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, incidentID, resp.ID)
	assert.Equal(t, "Jane Doe", resp.ReporterName)
}

func TestGetIncident_InvalidID(t *testing.T) {
	_, deps, router := newTestHandler(t)

	deps.incidents.EXPECT().GetIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/invalid-uuid", nil, authAs(t, deps, citizen()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	_, deps, router := newTestHandler(t)
	incidentID := uuid.New()

	deps.incidents.EXPECT().GetIncident(gomock.Any(), gomock.Any(), incidentID).Return(nil, service.ErrNotFound).Times(1)

	w := makeRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s", incidentID), nil, authAs(t, deps, citizen()))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Code)
}

func TestListIncidents_Success(t *testing.T) {
	_, deps, router := newTestHandler(t)
	caller := citizen()
	expected := []*models.Incident{
		{ID: uuid.New(), Title: "Incident 1", Status: models.StatusPending},
		{ID: uuid.New(), Title: "Incident 2", Status: models.StatusResolved},
	}

	deps.incidents.EXPECT().
		ListIncidents(gomock.Any(), caller, models.IncidentFilter{Page: 2, PageSize: 5}).
		Return(expected, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?page=2&pageSize=5", nil, authAs(t, deps, caller))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, expected[0].Title, resp[0].Title)
}

func TestListIncidents_AssignedToMe(t *testing.T) {
	_, deps, router := newTestHandler(t)
	caller := department()

	deps.incidents.EXPECT().
		ListIncidents(gomock.Any(), caller, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Caller, filter models.IncidentFilter) ([]*models.Incident, error) {
			require.NotNil(t, filter.AssignedDepartmentID)
			assert.Equal(t, caller.AccountID, *filter.AssignedDepartmentID)
			assert.Equal(t, models.StatusInProgress, filter.Status)
			assert.Equal(t, 1, filter.Page)
			assert.Equal(t, 20, filter.PageSize)
			return []*models.Incident{}, nil
		}).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?assigned=me&status=in_progress", nil, authAs(t, deps, caller))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListIncidents_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"page is not a number", "?page=abc"},
		{"pageSize is not a number", "?pageSize=x"},
		{"unknown assigned filter", "?assigned=others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, deps, router := newTestHandler(t)
			deps.incidents.EXPECT().ListIncidents(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			w := makeRequest(router, http.MethodGet, "/api/v1/incidents"+tt.query, nil, authAs(t, deps, department()))

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListIncidents_UnknownStatus(t *testing.T) {
	_, deps, router := newTestHandler(t)

	deps.incidents.EXPECT().ListIncidents(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: unknown status \"lost\"", service.ErrValidation)).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?status=lost", nil, authAs(t, deps, department()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown status")
}

func TestClaimIncident(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		caller := department()
		incidentID := uuid.New()
		update := &models.IncidentUpdate{
			ID:         uuid.New(),
			IncidentID: incidentID,
			AuthorID:   caller.AccountID,
			AuthorKind: models.AuthorDepartment,
			Message:    "Department has taken ownership of this incident",
			CreatedAt:  time.Now(),
		}

		deps.incidents.EXPECT().ClaimIncident(gomock.Any(), caller, incidentID).Return(update, nil).Times(1)

		w := makeRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/incidents/%s/claim", incidentID), nil, authAs(t, deps, caller))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp IncidentUpdateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "department", resp.AuthorKind)
		assert.Equal(t, "Department has taken ownership of this incident", resp.Message)
		assert.Nil(t, resp.StatusChange)
	})

	t.Run("already assigned", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		incidentID := uuid.New()

		deps.incidents.EXPECT().ClaimIncident(gomock.Any(), gomock.Any(), incidentID).Return(nil, service.ErrAlreadyAssigned).Times(1)

		w := makeRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/incidents/%s/claim", incidentID), nil, authAs(t, deps, department()))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "already_assigned", decodeError(t, w).Code)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("with message", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		caller := department()
		incidentID := uuid.New()
		resolved := models.StatusResolved
		incident := &models.Incident{ID: incidentID, Status: models.StatusResolved, AssignedDepartmentID: &caller.AccountID}
		update := &models.IncidentUpdate{ID: uuid.New(), IncidentID: incidentID, Message: "Fixed", StatusChange: &resolved}

		deps.incidents.EXPECT().
			UpdateStatus(gomock.Any(), caller, incidentID, models.StatusResolved, "Fixed").
			Return(incident, update, nil).Times(1)

		w := makeRequest(router, http.MethodPatch, fmt.Sprintf("/api/v1/incidents/%s/status", incidentID),
			jsonBody(t, UpdateStatusRequest{Status: "resolved", Message: "Fixed"}), authAs(t, deps, caller))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp UpdateStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "resolved", resp.Incident.Status)
		require.NotNil(t, resp.Update)
		assert.Equal(t, "Fixed", resp.Update.Message)
	})

	t.Run("without message", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		caller := department()
		incidentID := uuid.New()
		incident := &models.Incident{ID: incidentID, Status: models.StatusInProgress}

		deps.incidents.EXPECT().
			UpdateStatus(gomock.Any(), caller, incidentID, models.StatusInProgress, "").
			Return(incident, nil, nil).Times(1)

		w := makeRequest(router, http.MethodPatch, fmt.Sprintf("/api/v1/incidents/%s/status", incidentID),
			jsonBody(t, UpdateStatusRequest{Status: "in_progress"}), authAs(t, deps, caller))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `"update"`)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.incidents.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := makeRequest(router, http.MethodPatch, fmt.Sprintf("/api/v1/incidents/%s/status", uuid.New()),
			jsonBody(t, UpdateStatusRequest{Status: "archived"}), authAs(t, deps, department()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not assigned to caller", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.incidents.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil, service.ErrForbidden).Times(1)

		w := makeRequest(router, http.MethodPatch, fmt.Sprintf("/api/v1/incidents/%s/status", uuid.New()),
			jsonBody(t, UpdateStatusRequest{Status: "closed"}), authAs(t, deps, department()))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "forbidden", decodeError(t, w).Code)
	})
}

func TestIncidentUpdates(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		caller := citizen()
		incidentID := uuid.New()
		updates := []*models.IncidentUpdate{
			{ID: uuid.New(), IncidentID: incidentID, Message: "first", AuthorKind: models.AuthorDepartment},
			{ID: uuid.New(), IncidentID: incidentID, Message: "second", AuthorKind: models.AuthorCitizen},
		}

		deps.incidents.EXPECT().ListUpdates(gomock.Any(), caller, incidentID).Return(updates, nil).Times(1)

		w := makeRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s/updates", incidentID), nil, authAs(t, deps, caller))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp []IncidentUpdateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "first", resp[0].Message)
		assert.Nil(t, resp[1].StatusChange)
	})

	t.Run("post", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		caller := citizen()
		incidentID := uuid.New()
		update := &models.IncidentUpdate{ID: uuid.New(), IncidentID: incidentID, AuthorID: caller.AccountID, AuthorKind: models.AuthorCitizen, Message: "Any news?"}

		deps.incidents.EXPECT().PostMessage(gomock.Any(), caller, incidentID, "Any news?").Return(update, nil).Times(1)

		w := makeRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/incidents/%s/updates", incidentID),
			jsonBody(t, PostMessageRequest{Message: "Any news?"}), authAs(t, deps, caller))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Any news?")
	})

	t.Run("post empty message", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.incidents.EXPECT().PostMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := makeRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/incidents/%s/updates", uuid.New()),
			jsonBody(t, PostMessageRequest{}), authAs(t, deps, citizen()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCitizenProfile(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		caller := citizen()

		deps.accounts.EXPECT().
			ProvisionCitizen(gomock.Any(), caller, gomock.Any()).
			DoAndReturn(func(_ context.Context, c models.Caller, p *models.CitizenProfile) error {
				p.ID = c.AccountID
				return nil
			}).Times(1)

		w := makeRequest(router, http.MethodPost, "/api/v1/citizens/profile", jsonBody(t, CitizenProfileRequest{
			FullName: "Jane Doe", PhoneNumber: "555-0100", Address: "1 Elm St",
			City: "Springfield", State: "IL", ZipCode: "62701", IDNumber: "ID-1",
		}), authAs(t, deps, caller))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp CitizenProfileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, caller.AccountID, resp.ID)
	})

	t.Run("create twice", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.accounts.EXPECT().ProvisionCitizen(gomock.Any(), gomock.Any(), gomock.Any()).Return(service.ErrDuplicateAccount).Times(1)

		w := makeRequest(router, http.MethodPost, "/api/v1/citizens/profile", jsonBody(t, CitizenProfileRequest{
			FullName: "Jane Doe", PhoneNumber: "555-0100", Address: "1 Elm St",
			City: "Springfield", State: "IL", ZipCode: "62701", IDNumber: "ID-1",
		}), authAs(t, deps, citizen()))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("get missing", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.accounts.EXPECT().GetCitizenProfile(gomock.Any(), gomock.Any()).Return(nil, service.ErrNotFound).Times(1)

		w := makeRequest(router, http.MethodGet, "/api/v1/citizens/profile", nil, authAs(t, deps, citizen()))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDepartmentProfile(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		caller := department()

		deps.accounts.EXPECT().
			ProvisionDepartment(gomock.Any(), caller, gomock.Any()).
			DoAndReturn(func(_ context.Context, c models.Caller, p *models.DepartmentProfile) error {
				assert.Equal(t, models.DepartmentPublicWorks, p.DepartmentType)
				p.ID = c.AccountID
				return nil
			}).Times(1)

		w := makeRequest(router, http.MethodPost, "/api/v1/departments/profile", jsonBody(t, DepartmentProfileRequest{
			DepartmentName: "Roads", DepartmentType: "public_works", ContactEmail: "roads@city.gov",
			ContactPhone: "555-0200", Address: "2 Oak St", City: "Springfield", State: "IL",
		}), authAs(t, deps, caller))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.accounts.EXPECT().ProvisionDepartment(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := makeRequest(router, http.MethodPost, "/api/v1/departments/profile", jsonBody(t, DepartmentProfileRequest{
			DepartmentName: "Roads", DepartmentType: "parks", ContactEmail: "roads@city.gov",
			ContactPhone: "555-0200", Address: "2 Oak St", City: "Springfield", State: "IL",
		}), authAs(t, deps, department()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("citizen reads department profile", func(t *testing.T) {
		_, deps, router := newTestHandler(t)
		deps.accounts.EXPECT().GetDepartmentProfile(gomock.Any(), gomock.Any()).Return(nil, service.ErrForbidden).Times(1)

		w := makeRequest(router, http.MethodGet, "/api/v1/departments/profile", nil, authAs(t, deps, citizen()))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDepartmentDashboard(t *testing.T) {
	_, deps, router := newTestHandler(t)
	caller := department()
	dashboard := &models.DepartmentDashboard{
		Profile:  &models.DepartmentProfile{ID: caller.AccountID, DepartmentName: "Roads"},
		Assigned: []*models.Incident{{ID: uuid.New(), Title: "Pothole", Status: models.StatusInProgress}},
		Stats:    models.DepartmentStats{Total: 7, Assigned: 1, Pending: 3, InProgress: 1},
	}

	deps.incidents.EXPECT().DepartmentDashboard(gomock.Any(), caller).Return(dashboard, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/departments/dashboard", nil, authAs(t, deps, caller))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Roads", resp.Profile.DepartmentName)
	assert.Len(t, resp.Assigned, 1)
	assert.Equal(t, StatsResponse{Total: 7, Assigned: 1, Pending: 3, InProgress: 1}, resp.Stats)
}

func TestListEmergencyContacts(t *testing.T) {
	_, deps, router := newTestHandler(t)
	contacts := []*models.EmergencyContact{
		{ID: 1, ServiceName: "Police", PhoneNumber: "911", Availability: "24/7", IsActive: true},
	}

	deps.contacts.EXPECT().ListActive(gomock.Any()).Return(contacts, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/api/v1/emergency-contacts", nil, authAs(t, deps, citizen()))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []EmergencyContactResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Police", resp[0].ServiceName)
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		_, _, router := newTestHandler(t, stubCheck{name: "postgres"}, stubCheck{name: "redis"})

		w := makeRequest(router, http.MethodGet, "/api/v1/system/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, map[string]string{"postgres": "ok", "redis": "ok"}, resp.Checks)
	})

	t.Run("degraded", func(t *testing.T) {
		_, _, router := newTestHandler(t, stubCheck{name: "postgres"}, stubCheck{name: "redis", err: errors.New("dial tcp: refused")})

		w := makeRequest(router, http.MethodGet, "/api/v1/system/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unavailable", resp.Checks["redis"])
	})
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{service.ErrNotConfirmed, http.StatusForbidden, "not_confirmed"},
		{service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("wrapped: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{service.ErrValidation, http.StatusBadRequest, "validation_error"},
		{service.ErrDuplicateAccount, http.StatusConflict, "duplicate_account"},
		{service.ErrAlreadyAssigned, http.StatusConflict, "already_assigned"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, code := errorStatus(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
