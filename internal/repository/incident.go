package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
)

// querier - общее подмножество pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const incidentColumns = `
	i.id,
	i.citizen_id,
	i.title,
	i.description,
	i.category,
	i.severity,
	i.status,
	i.address,
	i.city,
	i.state,
	i.assigned_department_id,
	COALESCE(c.full_name, ''),
	COALESCE(c.phone_number, ''),
	i.created_at,
	i.updated_at`

const incidentFrom = `
	FROM incidents i
	LEFT JOIN citizens c ON c.id = i.citizen_id`

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.CitizenID,
		&incident.Title,
		&incident.Description,
		&incident.Category,
		&incident.Severity,
		&incident.Status,
		&incident.Location.Address,
		&incident.Location.City,
		&incident.Location.State,
		&incident.AssignedDepartmentID,
		&incident.ReporterName,
		&incident.ReporterPhone,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (citizen_id, title, description, category, severity, status, address, city, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING
			id,
			created_at,
			updated_at,
			COALESCE((SELECT full_name FROM citizens WHERE id = $1), ''),
			COALESCE((SELECT phone_number FROM citizens WHERE id = $1), '');
	`
	err := r.db.QueryRow(ctx, query,
		incident.CitizenID,
		incident.Title,
		incident.Description,
		incident.Category,
		incident.Severity,
		incident.Status,
		incident.Location.Address,
		incident.Location.City,
		incident.Location.State,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt, &incident.ReporterName, &incident.ReporterPhone)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: citizen profile is not provisioned", service.ErrForbidden)
		}
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return getIncident(ctx, r.db, id)
}

func getIncident(ctx context.Context, q querier, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT` + incidentColumns + incidentFrom + ` WHERE i.id = $1;`
	incident, err := scanIncident(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// List возвращает список инцидентов по фильтру с пагинацией, новые первыми
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.CitizenID != nil {
		args = append(args, *filter.CitizenID)
		conditions = append(conditions, fmt.Sprintf("i.citizen_id = $%d", len(args)))
	}
	if filter.AssignedDepartmentID != nil {
		args = append(args, *filter.AssignedDepartmentID)
		conditions = append(conditions, fmt.Sprintf("i.assigned_department_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	// рассчитываем смещение
	offset := (filter.Page - 1) * filter.PageSize
	args = append(args, filter.PageSize, offset)
	query := `SELECT` + incidentColumns + incidentFrom + where +
		fmt.Sprintf(" ORDER BY i.created_at DESC, i.id LIMIT $%d OFFSET $%d;", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// Claim закрепляет инцидент условным UPDATE и добавляет запись журнала в той же транзакции
func (r *IncidentRepository) Claim(ctx context.Context, incidentID, departmentID uuid.UUID, update *models.IncidentUpdate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmdTag, err := tx.Exec(ctx, `
		UPDATE incidents SET
			assigned_department_id = $2,
			updated_at = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')
		WHERE id = $1 AND assigned_department_id IS NULL;
	`, incidentID, departmentID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: department profile is not provisioned", service.ErrForbidden)
		}
		return fmt.Errorf("failed to claim incident: %w", err)
	}

	// 0 строк: инцидента нет или он уже закреплен
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM incidents WHERE id = $1);`, incidentID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check incident existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("incident with id %s: %w", incidentID, service.ErrNotFound)
		}
		return fmt.Errorf("incident with id %s: %w", incidentID, service.ErrAlreadyAssigned)
	}

	if err := insertUpdate(ctx, tx, update); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit claim: %w", err)
	}
	return nil
}

// UpdateStatus меняет статус под блокировкой строки инцидента; запись журнала, если есть, пишется в той же транзакции
func (r *IncidentRepository) UpdateStatus(ctx context.Context, incidentID, departmentID uuid.UUID, status models.IncidentStatus, update *models.IncidentUpdate) (*models.Incident, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin status transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var assigned *uuid.UUID
	err = tx.QueryRow(ctx, `SELECT assigned_department_id FROM incidents WHERE id = $1 FOR UPDATE;`, incidentID).Scan(&assigned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", incidentID, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock incident: %w", err)
	}
	if assigned == nil || *assigned != departmentID {
		return nil, fmt.Errorf("incident with id %s is not assigned to department: %w", incidentID, service.ErrForbidden)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE incidents SET
			status = $2,
			updated_at = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')
		WHERE id = $1;
	`, incidentID, status); err != nil {
		return nil, fmt.Errorf("failed to update incident status: %w", err)
	}

	if update != nil {
		if err := insertUpdate(ctx, tx, update); err != nil {
			return nil, err
		}
	}

	incident, err := getIncident(ctx, tx, incidentID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return incident, nil
}

// AppendUpdate добавляет запись журнала без смены статуса
func (r *IncidentRepository) AppendUpdate(ctx context.Context, update *models.IncidentUpdate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Блокировка строки инцидента упорядочивает записи журнала
	var id uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM incidents WHERE id = $1 FOR UPDATE;`, update.IncidentID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("incident with id %s: %w", update.IncidentID, service.ErrNotFound)
		}
		return fmt.Errorf("failed to lock incident: %w", err)
	}

	if err := insertUpdate(ctx, tx, update); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit incident update: %w", err)
	}
	return nil
}

// insertUpdate вызывается, когда строка инцидента уже заблокирована в tx.
// created_at строго больше времени предыдущей записи того же инцидента.
func insertUpdate(ctx context.Context, tx pgx.Tx, update *models.IncidentUpdate) error {
	query := `
		INSERT INTO incident_updates (incident_id, author_id, author_kind, message, status_change, created_at)
		VALUES (
			$1, $2, $3, $4, $5,
			GREATEST(
				clock_timestamp(),
				(SELECT MAX(created_at) + INTERVAL '1 microsecond' FROM incident_updates WHERE incident_id = $1)
			)
		)
		RETURNING id, created_at;
	`
	err := tx.QueryRow(ctx, query,
		update.IncidentID,
		update.AuthorID,
		update.AuthorKind,
		update.Message,
		update.StatusChange,
	).Scan(&update.ID, &update.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert incident update: %w", err)
	}
	return nil
}

// ListUpdates возвращает журнал инцидента в хронологическом порядке
func (r *IncidentRepository) ListUpdates(ctx context.Context, incidentID uuid.UUID) ([]*models.IncidentUpdate, error) {
	query := `
		SELECT
			id,
			incident_id,
			author_id,
			author_kind,
			message,
			status_change,
			created_at
		FROM incident_updates
		WHERE incident_id = $1
		ORDER BY created_at ASC;
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incident updates: %w", err)
	}
	defer rows.Close()

	updates := make([]*models.IncidentUpdate, 0)
	for rows.Next() {
		update := &models.IncidentUpdate{}
		err := rows.Scan(
			&update.ID,
			&update.IncidentID,
			&update.AuthorID,
			&update.AuthorKind,
			&update.Message,
			&update.StatusChange,
			&update.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident update row: %w", err)
		}
		updates = append(updates, update)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error updates iteration: %w", err)
	}
	return updates, nil
}

// Stats возвращает счетчики для панели департамента
func (r *IncidentRepository) Stats(ctx context.Context, departmentID uuid.UUID) (models.DepartmentStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE assigned_department_id = $1),
			COUNT(*) FILTER (WHERE assigned_department_id = $1 AND status = 'pending'),
			COUNT(*) FILTER (WHERE assigned_department_id = $1 AND status = 'in_progress')
		FROM incidents;
	`
	var stats models.DepartmentStats
	err := r.db.QueryRow(ctx, query, departmentID).Scan(
		&stats.Total,
		&stats.Assigned,
		&stats.Pending,
		&stats.InProgress,
	)
	if err != nil {
		return models.DepartmentStats{}, fmt.Errorf("failed to get department stats: %w", err)
	}
	return stats, nil
}

func incidentCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s", id.String())
}

// setIncidentIfNewer записывает инцидент в хэш кэша, только если версия в кэше не новее.
// Версия - updated_at в микросекундах; ARGV: данные, версия, TTL в мс.
var setIncidentIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) > tonumber(ARGV[2]) then
	return 0
end
redis.call('HSET', KEYS[1], 'data', ARGV[1], 'version', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	val, err := r.redisClient.HGet(ctx, incidentCacheKey(id), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis. Более старая версия не перезаписывает
// более новую, поэтому запоздавшее чтение не вернет в кэш устаревшую строку.
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	err = setIncidentIfNewer.Run(ctx, r.redisClient,
		[]string{incidentCacheKey(incident.ID)},
		val, incident.UpdatedAt.UnixMicro(), r.cacheTTL.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	if err := r.redisClient.Del(ctx, incidentCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
