package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) service.AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, password_hash, role, confirmed, COALESCE(confirmation_token_hash, ''), created_at, confirmed_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Confirmed,
		&account.ConfirmationTokenHash,
		&account.CreatedAt,
		&account.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// CreateAccount сохраняет новую неподтвержденную учетную запись
func (r *AccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, role, confirmation_token_hash)
		VALUES ($1, $2, $3, $4, NULLIF($5::text, '')) RETURNING created_at;
	`
	err := r.db.QueryRow(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.ConfirmationTokenHash,
	).Scan(&account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account with email %s: %w", account.Email, service.ErrDuplicateAccount)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1;`
	account, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1;`
	account, err := scanAccount(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account with email %s: %w", email, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return account, nil
}

// ConfirmAccount подтверждает учетную запись и гасит токен, чтобы он не сработал повторно
func (r *AccountRepository) ConfirmAccount(ctx context.Context, tokenHash string) (*models.Account, error) {
	query := `
		UPDATE accounts SET
			confirmed = TRUE,
			confirmed_at = NOW(),
			confirmation_token_hash = NULL
		WHERE confirmation_token_hash = $1
		RETURNING ` + accountColumns + `;`
	account, err := scanAccount(r.db.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("confirmation token: %w", service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to confirm account: %w", err)
	}
	return account, nil
}

// CreateCitizen создает профиль гражданина; повторное создание отклоняется первичным ключом
func (r *AccountRepository) CreateCitizen(ctx context.Context, profile *models.CitizenProfile) error {
	query := `
		INSERT INTO citizens (id, full_name, phone_number, address, city, state, zip_code, id_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at;
	`
	err := r.db.QueryRow(ctx, query,
		profile.ID,
		profile.FullName,
		profile.PhoneNumber,
		profile.Address,
		profile.City,
		profile.State,
		profile.ZipCode,
		profile.IDNumber,
	).Scan(&profile.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("citizen profile %s: %w", profile.ID, service.ErrDuplicateAccount)
		}
		return fmt.Errorf("failed to create citizen profile: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetCitizen(ctx context.Context, id uuid.UUID) (*models.CitizenProfile, error) {
	query := `
		SELECT id, full_name, phone_number, address, city, state, zip_code, id_number, created_at
		FROM citizens
		WHERE id = $1;
	`
	profile := &models.CitizenProfile{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.PhoneNumber,
		&profile.Address,
		&profile.City,
		&profile.State,
		&profile.ZipCode,
		&profile.IDNumber,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("citizen profile %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get citizen profile: %w", err)
	}
	return profile, nil
}

func (r *AccountRepository) CreateDepartment(ctx context.Context, profile *models.DepartmentProfile) error {
	query := `
		INSERT INTO departments (id, department_name, department_type, contact_email, contact_phone, address, city, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at;
	`
	err := r.db.QueryRow(ctx, query,
		profile.ID,
		profile.DepartmentName,
		profile.DepartmentType,
		profile.ContactEmail,
		profile.ContactPhone,
		profile.Address,
		profile.City,
		profile.State,
	).Scan(&profile.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("department profile %s: %w", profile.ID, service.ErrDuplicateAccount)
		}
		return fmt.Errorf("failed to create department profile: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetDepartment(ctx context.Context, id uuid.UUID) (*models.DepartmentProfile, error) {
	query := `
		SELECT id, department_name, department_type, contact_email, contact_phone, address, city, state, created_at
		FROM departments
		WHERE id = $1;
	`
	profile := &models.DepartmentProfile{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.DepartmentName,
		&profile.DepartmentType,
		&profile.ContactEmail,
		&profile.ContactPhone,
		&profile.Address,
		&profile.City,
		&profile.State,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("department profile %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get department profile: %w", err)
	}
	return profile, nil
}
