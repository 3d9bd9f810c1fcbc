package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

const (
	tableName = "appointments"

	// exclusionViolation SQLSTATE нарушения EXCLUDE ограничения
	exclusionViolation = "23P01"
)

var columns = []string{
	"id",
	"patient_id",
	"practitioner_id",
	"scheduled_at",
	"requested_at",
	"duration_minutes",
	"status",
	"cancelled_by",
	"created_at",
	"updated_at",
}

// overlapsExpr условие пересечения окна сессии [scheduled_at, ends_at) с [from, to)
const overlapsExpr = "scheduled_at < ? AND ends_at > ?"

// Repository репозиторий для работы с записями на сессии
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись
// Если в контексте передана активная транзакция, использует её.
// Пересечение с активной записью того же специалиста или пациента ловится ограничением БД и возвращается как ErrOverlap.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"patient_id",
			"practitioner_id",
			"scheduled_at",
			"ends_at",
			"requested_at",
			"duration_minutes",
			"status",
		).
		Values(
			a.PatientID,
			a.PractitionerID,
			a.ScheduledAt.UTC(),
			a.End().UTC(),
			a.RequestedAt.UTC(),
			int(a.Duration/time.Minute),
			a.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &createdAt, &updatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == exclusionViolation {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return a, nil
}

// ListActiveByPractitioner возвращает не отмененные записи специалиста, пересекающие [from, to)
func (r *Repository) ListActiveByPractitioner(ctx context.Context, practitionerID int64, from, to time.Time) ([]*domain.Appointment, error) {
	return r.listActive(ctx, "ListActiveByPractitioner", squirrel.Eq{"practitioner_id": practitionerID}, from, to)
}

// ListActiveByPatient возвращает не отмененные записи пациента, пересекающие [from, to)
func (r *Repository) ListActiveByPatient(ctx context.Context, patientID int64, from, to time.Time) ([]*domain.Appointment, error) {
	return r.listActive(ctx, "ListActiveByPatient", squirrel.Eq{"patient_id": patientID}, from, to)
}

func (r *Repository) listActive(ctx context.Context, op string, owner squirrel.Eq, from, to time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(owner).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Where(squirrel.Expr(overlapsExpr, to.UTC(), from.UTC())).
		OrderBy("scheduled_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	return r.query(ctx, executor, op, query, args)
}

// List возвращает записи по фильтру, отсортированные по времени начала
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).From(tableName)
	if filter.PatientID != nil {
		builder = builder.Where(squirrel.Eq{"patient_id": *filter.PatientID})
	}
	if filter.PractitionerID != nil {
		builder = builder.Where(squirrel.Eq{"practitioner_id": *filter.PractitionerID})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"scheduled_at": filter.From.UTC()})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"scheduled_at": filter.To.UTC()})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := builder.OrderBy("scheduled_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "List", query, args)
}

// UpdateStatus переводит запись из статуса from в статус to
// Если статус уже не равен from (параллельный переход), возвращает ErrStatusChanged
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, cancelledBy *domain.ActorRole) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(tableName).
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from})
	if cancelledBy != nil {
		builder = builder.Set("cancelled_by", *cancelledBy)
	}

	query, args, err := builder.Suffix("RETURNING " + strings.Join(columns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return a, nil
}

// ListDue возвращает активные записи, начавшиеся не позже now, постранично (keyset по id)
func (r *Repository) ListDue(ctx context.Context, now time.Time, afterID int64, limit int) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"status": domain.ActiveStatuses}).
		Where(squirrel.LtOrEq{"scheduled_at": now.UTC()}).
		Where(squirrel.Gt{"id": afterID}).
		OrderBy("id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListDue", query, args)
}

func (r *Repository) query(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]*domain.Appointment, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute select: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	var appointments []*domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan appointment: %w", ErrScanRow, op, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %w", ErrScanRow, op, err)
	}

	return appointments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		a               domain.Appointment
		durationMinutes int
		cancelledBy     sql.NullString
		createdAt       sql.NullTime
		updatedAt       sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.PractitionerID,
		&a.ScheduledAt,
		&a.RequestedAt,
		&durationMinutes,
		&a.Status,
		&cancelledBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.ScheduledAt = a.ScheduledAt.UTC()
	a.RequestedAt = a.RequestedAt.UTC()
	a.Duration = time.Duration(durationMinutes) * time.Minute
	if cancelledBy.Valid {
		role := domain.ActorRole(cancelledBy.String)
		a.CancelledBy = &role
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}
