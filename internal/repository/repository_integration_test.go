//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
	"github.com/shenikar/incident_reporting_system/pkg/postgres"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RepositorySuite struct {
	suite.Suite

	ctx         context.Context
	pgContainer *tcpostgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pool        *pgxpool.Pool
	redisClient *redis.Client

	accounts  service.AccountRepository
	incidents service.IncidentRepository
	contacts  service.EmergencyContactRepository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("incidents"),
		tcpostgres.WithUsername("incidents"),
		tcpostgres.WithPassword("incidents"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err, "failed to start postgres container")
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(postgres.RunMigrations(dsn, "file://../../migrations"))

	s.pool, err = postgres.NewPostgresDB(s.ctx, dsn)
	s.Require().NoError(err)

	rdContainer, err := tcredis.Run(s.ctx, "redis:7-alpine")
	s.Require().NoError(err, "failed to start redis container")
	s.rdContainer = rdContainer

	redisURL, err := rdContainer.ConnectionString(s.ctx)
	s.Require().NoError(err)
	opts, err := redis.ParseURL(redisURL)
	s.Require().NoError(err)
	s.redisClient = redis.NewClient(opts)

	s.accounts = NewAccountRepository(s.pool)
	s.incidents = NewIncidentRepository(s.pool, s.redisClient, time.Minute)
	s.contacts = NewEmergencyContactRepository(s.pool, s.redisClient, time.Minute)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
	if s.rdContainer != nil {
		_ = s.rdContainer.Terminate(s.ctx)
	}
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE incident_updates, incidents, citizens, departments, accounts, emergency_contacts CASCADE;`)
	s.Require().NoError(err)
	s.Require().NoError(s.redisClient.FlushAll(s.ctx).Err())
}

func (s *RepositorySuite) createAccount(role models.Role) uuid.UUID {
	account := &models.Account{
		ID:                    uuid.New(),
		Email:                 uuid.NewString() + "@example.com",
		PasswordHash:          "hash",
		Role:                  role,
		ConfirmationTokenHash: uuid.NewString(),
	}
	s.Require().NoError(s.accounts.CreateAccount(s.ctx, account))

	switch role {
	case models.RoleCitizen:
		s.Require().NoError(s.accounts.CreateCitizen(s.ctx, &models.CitizenProfile{
			ID: account.ID, FullName: "Jane Doe", PhoneNumber: "555-0100",
			Address: "1 Elm St", City: "Springfield", State: "IL", ZipCode: "62701", IDNumber: "D1",
		}))
	case models.RoleDepartment:
		s.Require().NoError(s.accounts.CreateDepartment(s.ctx, &models.DepartmentProfile{
			ID: account.ID, DepartmentName: "Public Works", DepartmentType: models.DepartmentPublicWorks,
			ContactEmail: "works@example.com", ContactPhone: "555-0199",
			Address: "City Hall", City: "Springfield", State: "IL",
		}))
	}
	return account.ID
}

func (s *RepositorySuite) createIncident(citizenID uuid.UUID) *models.Incident {
	incident := &models.Incident{
		CitizenID:   citizenID,
		Title:       "Pothole on Main St",
		Description: "Deep pothole",
		Category:    models.CategoryInfrastructure,
		Severity:    models.SeverityMedium,
		Status:      models.StatusPending,
		Location:    models.Location{Address: "100 Main St", City: "Springfield", State: "IL"},
	}
	s.Require().NoError(s.incidents.Create(s.ctx, incident))
	return incident
}

func claimUpdate(incidentID, departmentID uuid.UUID) *models.IncidentUpdate {
	return &models.IncidentUpdate{
		IncidentID: incidentID,
		AuthorID:   departmentID,
		AuthorKind: models.AuthorDepartment,
		Message:    service.ClaimMessage,
	}
}

func (s *RepositorySuite) TestCreateAndGet() {
	citizenID := s.createAccount(models.RoleCitizen)
	incident := s.createIncident(citizenID)

	s.NotEqual(uuid.Nil, incident.ID)
	s.Equal("Jane Doe", incident.ReporterName)

	stored, err := s.incidents.GetByID(s.ctx, incident.ID)
	s.Require().NoError(err)
	s.Equal(citizenID, stored.CitizenID)
	s.Equal(models.StatusPending, stored.Status)
	s.Nil(stored.AssignedDepartmentID)
	s.Equal("555-0100", stored.ReporterPhone)

	_, err = s.incidents.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *RepositorySuite) TestCreateWithoutCitizenProfile() {
	err := s.incidents.Create(s.ctx, &models.Incident{
		CitizenID: uuid.New(), Title: "t", Description: "d",
		Category: models.CategoryFire, Severity: models.SeverityLow, Status: models.StatusPending,
	})
	s.ErrorIs(err, service.ErrForbidden)
}

func (s *RepositorySuite) TestConcurrentClaim() {
	incident := s.createIncident(s.createAccount(models.RoleCitizen))

	const departments = 8
	ids := make([]uuid.UUID, departments)
	for i := range ids {
		ids[i] = s.createAccount(models.RoleDepartment)
	}

	results := make(chan error, departments)
	var wg sync.WaitGroup
	for _, departmentID := range ids {
		wg.Add(1)
		go func(departmentID uuid.UUID) {
			defer wg.Done()
			results <- s.incidents.Claim(s.ctx, incident.ID, departmentID, claimUpdate(incident.ID, departmentID))
		}(departmentID)
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		if err == nil {
			won++
			continue
		}
		s.ErrorIs(err, service.ErrAlreadyAssigned)
		lost++
	}
	s.Equal(1, won)
	s.Equal(departments-1, lost)

	updates, err := s.incidents.ListUpdates(s.ctx, incident.ID)
	s.Require().NoError(err)
	s.Len(updates, 1)
}

func (s *RepositorySuite) TestClaimUnknownIncident() {
	departmentID := s.createAccount(models.RoleDepartment)
	id := uuid.New()

	err := s.incidents.Claim(s.ctx, id, departmentID, claimUpdate(id, departmentID))

	s.ErrorIs(err, service.ErrNotFound)
}

func (s *RepositorySuite) TestUpdateStatusAtomicWithLog() {
	incident := s.createIncident(s.createAccount(models.RoleCitizen))
	owner := s.createAccount(models.RoleDepartment)
	other := s.createAccount(models.RoleDepartment)
	s.Require().NoError(s.incidents.Claim(s.ctx, incident.ID, owner, claimUpdate(incident.ID, owner)))

	status := models.StatusInProgress
	_, err := s.incidents.UpdateStatus(s.ctx, incident.ID, other, status, &models.IncidentUpdate{
		IncidentID: incident.ID, AuthorID: other, AuthorKind: models.AuthorDepartment, Message: "Not ours", StatusChange: &status,
	})
	s.ErrorIs(err, service.ErrForbidden)

	updated, err := s.incidents.UpdateStatus(s.ctx, incident.ID, owner, status, &models.IncidentUpdate{
		IncidentID: incident.ID, AuthorID: owner, AuthorKind: models.AuthorDepartment, Message: "Crew dispatched", StatusChange: &status,
	})
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, updated.Status)

	resolved, err := s.incidents.UpdateStatus(s.ctx, incident.ID, owner, models.StatusResolved, nil)
	s.Require().NoError(err)
	s.Equal(models.StatusResolved, resolved.Status)

	updates, err := s.incidents.ListUpdates(s.ctx, incident.ID)
	s.Require().NoError(err)
	s.Require().Len(updates, 2)
	s.Nil(updates[0].StatusChange)
	s.Require().NotNil(updates[1].StatusChange)
	s.Equal(models.StatusInProgress, *updates[1].StatusChange)
	s.True(updates[1].CreatedAt.After(updates[0].CreatedAt))
}

func (s *RepositorySuite) TestAppendUpdateTimestampsStrictlyIncrease() {
	citizenID := s.createAccount(models.RoleCitizen)
	incident := s.createIncident(citizenID)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.incidents.AppendUpdate(s.ctx, &models.IncidentUpdate{
				IncidentID: incident.ID, AuthorID: citizenID, AuthorKind: models.AuthorCitizen, Message: "any news?",
			}))
		}()
	}
	wg.Wait()

	updates, err := s.incidents.ListUpdates(s.ctx, incident.ID)
	s.Require().NoError(err)
	s.Require().Len(updates, 10)
	for i := 1; i < len(updates); i++ {
		s.True(updates[i].CreatedAt.After(updates[i-1].CreatedAt))
	}

	err = s.incidents.AppendUpdate(s.ctx, &models.IncidentUpdate{IncidentID: uuid.New(), AuthorID: citizenID, AuthorKind: models.AuthorCitizen, Message: "x"})
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *RepositorySuite) TestListAndStats() {
	alice := s.createAccount(models.RoleCitizen)
	bob := s.createAccount(models.RoleCitizen)
	department := s.createAccount(models.RoleDepartment)
	first := s.createIncident(alice)
	s.createIncident(alice)
	s.createIncident(bob)
	s.Require().NoError(s.incidents.Claim(s.ctx, first.ID, department, claimUpdate(first.ID, department)))

	own, err := s.incidents.List(s.ctx, models.IncidentFilter{CitizenID: &alice, Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Len(own, 2)

	assigned, err := s.incidents.List(s.ctx, models.IncidentFilter{AssignedDepartmentID: &department, Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Require().Len(assigned, 1)
	s.Equal(first.ID, assigned[0].ID)

	page, err := s.incidents.List(s.ctx, models.IncidentFilter{Status: models.StatusPending, Page: 2, PageSize: 2})
	s.Require().NoError(err)
	s.Len(page, 1)

	stats, err := s.incidents.Stats(s.ctx, department)
	s.Require().NoError(err)
	s.Equal(models.DepartmentStats{Total: 3, Assigned: 1, Pending: 1}, stats)
}

func (s *RepositorySuite) TestIncidentCache() {
	incident := s.createIncident(s.createAccount(models.RoleCitizen))

	cached, err := s.incidents.GetIncidentFromCache(s.ctx, incident.ID)
	s.Require().NoError(err)
	s.Nil(cached)

	s.Require().NoError(s.incidents.SetIncidentCache(s.ctx, incident))
	cached, err = s.incidents.GetIncidentFromCache(s.ctx, incident.ID)
	s.Require().NoError(err)
	s.Require().NotNil(cached)
	s.Equal(incident.Title, cached.Title)

	s.Require().NoError(s.incidents.InvalidateIncidentCache(s.ctx, incident.ID))
	cached, err = s.incidents.GetIncidentFromCache(s.ctx, incident.ID)
	s.Require().NoError(err)
	s.Nil(cached)
}

func (s *RepositorySuite) TestIncidentCache_StaleWriteDoesNotOverwrite() {
	department := s.createAccount(models.RoleDepartment)
	stale := s.createIncident(s.createAccount(models.RoleCitizen))

	s.Require().NoError(s.incidents.Claim(s.ctx, stale.ID, department, claimUpdate(stale.ID, department)))
	fresh, err := s.incidents.GetByID(s.ctx, stale.ID)
	s.Require().NoError(err)
	s.True(fresh.UpdatedAt.After(stale.UpdatedAt))

	// Свежая версия уже в кэше, запоздавшее чтение пытается записать старую
	s.Require().NoError(s.incidents.SetIncidentCache(s.ctx, fresh))
	s.Require().NoError(s.incidents.SetIncidentCache(s.ctx, stale))

	cached, err := s.incidents.GetIncidentFromCache(s.ctx, stale.ID)
	s.Require().NoError(err)
	s.Require().NotNil(cached)
	s.True(cached.IsAssignedTo(department))
}

func (s *RepositorySuite) TestAccounts() {
	account := &models.Account{
		ID: uuid.New(), Email: "jane@example.com", PasswordHash: "hash",
		Role: models.RoleCitizen, ConfirmationTokenHash: "token-hash",
	}
	s.Require().NoError(s.accounts.CreateAccount(s.ctx, account))

	err := s.accounts.CreateAccount(s.ctx, &models.Account{ID: uuid.New(), Email: "jane@example.com", PasswordHash: "h", Role: models.RoleCitizen})
	s.ErrorIs(err, service.ErrDuplicateAccount)

	confirmed, err := s.accounts.ConfirmAccount(s.ctx, "token-hash")
	s.Require().NoError(err)
	s.True(confirmed.Confirmed)
	s.NotNil(confirmed.ConfirmedAt)

	_, err = s.accounts.ConfirmAccount(s.ctx, "token-hash")
	s.ErrorIs(err, service.ErrNotFound)

	byEmail, err := s.accounts.GetAccountByEmail(s.ctx, "jane@example.com")
	s.Require().NoError(err)
	s.Equal(account.ID, byEmail.ID)

	profile := &models.CitizenProfile{
		ID: account.ID, FullName: "Jane", PhoneNumber: "1", Address: "a", City: "b", State: "c", ZipCode: "d", IDNumber: "e",
	}
	s.Require().NoError(s.accounts.CreateCitizen(s.ctx, profile))
	s.ErrorIs(s.accounts.CreateCitizen(s.ctx, profile), service.ErrDuplicateAccount)

	_, err = s.accounts.GetDepartment(s.ctx, account.ID)
	s.ErrorIs(err, service.ErrNotFound)
}

func (s *RepositorySuite) TestEmergencyContacts() {
	s.Require().NoError(s.contacts.UpsertContact(s.ctx, &models.EmergencyContact{ServiceName: "Police", PhoneNumber: "911", IsActive: true}))
	s.Require().NoError(s.contacts.UpsertContact(s.ctx, &models.EmergencyContact{ServiceName: "Police", PhoneNumber: "112", IsActive: true}))
	s.Require().NoError(s.contacts.UpsertContact(s.ctx, &models.EmergencyContact{ServiceName: "Old Line", PhoneNumber: "000", IsActive: false}))

	contacts, err := s.contacts.ListActiveContacts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(contacts, 1)
	s.Equal("112", contacts[0].PhoneNumber)

	s.Require().NoError(s.contacts.SetContactsCache(s.ctx, contacts))
	cached, err := s.contacts.GetContactsFromCache(s.ctx)
	s.Require().NoError(err)
	s.Equal(contacts, cached)

	s.Require().NoError(s.contacts.InvalidateContactsCache(s.ctx))
	cached, err = s.contacts.GetContactsFromCache(s.ctx)
	s.Require().NoError(err)
	s.Nil(cached)
}
