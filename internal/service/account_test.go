package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAccountService(t *testing.T) (AccountService, *mocks.MockAccountRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockAccountRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	return NewAccountService(repoMock, logger), repoMock
}

func validCitizenProfile() *models.CitizenProfile {
	return &models.CitizenProfile{
		FullName:    "Jane Doe",
		PhoneNumber: "+1-555-0100",
		Address:     "1 Elm St",
		City:        "Springfield",
		State:       "IL",
		ZipCode:     "62701",
		IDNumber:    "D1234567",
	}
}

func validDepartmentProfile() *models.DepartmentProfile {
	return &models.DepartmentProfile{
		DepartmentName: "Springfield Public Works",
		DepartmentType: models.DepartmentPublicWorks,
		ContactEmail:   "works@springfield.gov",
		ContactPhone:   "+1-555-0199",
		Address:        "200 City Hall Sq",
		City:           "Springfield",
		State:          "IL",
	}
}

func TestProvisionCitizen_Success(t *testing.T) {
	// Подготовка
	service, repoMock := newTestAccountService(t)
	ctx := context.Background()
	caller := citizenCaller()
	profile := validCitizenProfile()
	profile.FullName = "  Jane Doe "

	// Ожидания
	repoMock.EXPECT().CreateCitizen(ctx, profile).Return(nil).Times(1)

	// Действие
	err := service.ProvisionCitizen(ctx, caller, profile)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, caller.AccountID, profile.ID)
	assert.Equal(t, "Jane Doe", profile.FullName)
}

func TestProvisionCitizen_CallerRejected(t *testing.T) {
	unconfirmed := citizenCaller()
	unconfirmed.Confirmed = false

	tests := []struct {
		name    string
		caller  models.Caller
		wantErr error
	}{
		{name: "anonymous", caller: models.Caller{}, wantErr: ErrUnauthenticated},
		{name: "unconfirmed", caller: unconfirmed, wantErr: ErrNotConfirmed},
		{name: "department role", caller: departmentCaller(), wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestAccountService(t)

			err := service.ProvisionCitizen(context.Background(), tt.caller, validCitizenProfile())

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProvisionCitizen_MissingField(t *testing.T) {
	service, _ := newTestAccountService(t)
	profile := validCitizenProfile()
	profile.IDNumber = " "

	err := service.ProvisionCitizen(context.Background(), citizenCaller(), profile)

	require.ErrorIs(t, err, ErrValidation)
}

func TestProvisionCitizen_AlreadyProvisioned(t *testing.T) {
	service, repoMock := newTestAccountService(t)
	ctx := context.Background()

	repoMock.EXPECT().CreateCitizen(ctx, gomock.Any()).Return(ErrDuplicateAccount).Times(1)

	err := service.ProvisionCitizen(ctx, citizenCaller(), validCitizenProfile())

	require.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestProvisionDepartment_Success(t *testing.T) {
	service, repoMock := newTestAccountService(t)
	ctx := context.Background()
	caller := departmentCaller()
	profile := validDepartmentProfile()

	repoMock.EXPECT().CreateDepartment(ctx, profile).Return(nil).Times(1)

	err := service.ProvisionDepartment(ctx, caller, profile)

	require.NoError(t, err)
	assert.Equal(t, caller.AccountID, profile.ID)
}

func TestProvisionDepartment_UnknownType(t *testing.T) {
	service, _ := newTestAccountService(t)
	profile := validDepartmentProfile()
	profile.DepartmentType = "sanitation"

	err := service.ProvisionDepartment(context.Background(), departmentCaller(), profile)

	require.ErrorIs(t, err, ErrValidation)
}

func TestProvisionDepartment_CitizenForbidden(t *testing.T) {
	service, _ := newTestAccountService(t)

	err := service.ProvisionDepartment(context.Background(), citizenCaller(), validDepartmentProfile())

	require.ErrorIs(t, err, ErrForbidden)
}

func TestProvisionDepartment_RepoError(t *testing.T) {
	service, repoMock := newTestAccountService(t)
	ctx := context.Background()

	repoMock.EXPECT().CreateDepartment(ctx, gomock.Any()).Return(errors.New("connection reset")).Times(1)

	err := service.ProvisionDepartment(ctx, departmentCaller(), validDepartmentProfile())

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not create department profile")
}

func TestGetCitizenProfile(t *testing.T) {
	service, repoMock := newTestAccountService(t)
	ctx := context.Background()
	caller := citizenCaller()
	profile := validCitizenProfile()
	profile.ID = caller.AccountID

	repoMock.EXPECT().GetCitizen(ctx, caller.AccountID).Return(profile, nil).Times(1)

	result, err := service.GetCitizenProfile(ctx, caller)

	require.NoError(t, err)
	assert.Equal(t, profile, result)
}

func TestGetDepartmentProfile_NotProvisioned(t *testing.T) {
	service, repoMock := newTestAccountService(t)
	ctx := context.Background()
	caller := departmentCaller()

	repoMock.EXPECT().GetDepartment(ctx, caller.AccountID).Return(nil, ErrNotFound).Times(1)

	_, err := service.GetDepartmentProfile(ctx, caller)

	require.ErrorIs(t, err, ErrNotFound)
}
